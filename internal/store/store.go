// Package store persists article records, skipping any record whose URL is
// already stored.
package store

import (
	"context"
	"strings"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Store is a document store keyed by article URL
type Store interface {
	// Save stores the records not yet present and returns how many were new.
	Save(ctx context.Context, records []common.ArticleRecord) (int, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// Open connects to the store named by uri: mongodb:// and mongodb+srv://
// select MongoDB, sqlite://<path> a local SQLite file. Connection failures
// are fatal.
func Open(ctx context.Context, uri, database, collection string) (Store, error) {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return OpenMongo(ctx, uri, database, collection)
	case strings.HasPrefix(uri, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(uri, "sqlite://"), collection)
	case uri == "":
		return nil, common.Fatal("no document store configured")
	default:
		return nil, common.Fatal("unsupported store URI scheme in %q", redact(uri))
	}
}

// redact hides credentials embedded in uri
func redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "xxxxx@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
