package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite stores records in a local table whose url column is the primary key
type SQLite struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens the database file at path, creating it and the table if
// needed.
func OpenSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if !tableName.MatchString(table) {
		return nil, common.Fatal("invalid table name %q", table)
	}
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, common.Fatal("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.Fatal("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, table: table}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, common.Fatal("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
            url TEXT PRIMARY KEY,
            site TEXT,
            title TEXT,
            summary TEXT,
            publisher TEXT,
            category1 TEXT,
            category2 TEXT,
            rank INTEGER,
            scraped_at TIMESTAMP,
            article_id TEXT,
            content TEXT,
            writer TEXT,
            published_at TIMESTAMP,
            updated_at TIMESTAMP,
            content_unavailable_reason TEXT,
            failures TEXT
        );`)
	if err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

// Save inserts every record in one transaction, ignoring known urls.
func (s *SQLite) Save(ctx context.Context, records []common.ArticleRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+s.table+`(url, site, title, summary, publisher,
        category1, category2, rank, scraped_at, article_id, content, writer, published_at, updated_at,
        content_unavailable_reason, failures)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(url) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, r := range records {
		if r.URL == "" {
			continue
		}
		var failures []byte
		if len(r.Failures) > 0 {
			if failures, err = json.Marshal(r.Failures); err != nil {
				return 0, fmt.Errorf("encode failures of %s: %w", r.URL, err)
			}
		}
		res, err := stmt.ExecContext(ctx,
			r.URL, r.Site, r.Title, r.Summary, r.Publisher,
			r.Category1, r.Category2, r.Rank, r.ScrapedAt, r.ArticleID, r.Content, r.Writer,
			r.PublishedAt, r.UpdatedAt, r.UnavailableReason, string(failures))
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.URL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		saved += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// Count returns the number of stored rows
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func (s *SQLite) Close(context.Context) error { return s.db.Close() }
