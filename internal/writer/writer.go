package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// bom makes spreadsheet tools read the file as UTF-8
const bom = "\ufeff"

const timeLayout = "2006-01-02 15:04:05"

// Header lists the flat file columns in order
var Header = []string{
	"site", "title", "summary", "url", "publisher", "category1", "category2", "rank",
	"scraped_at", "article_id", "content", "writer", "published_at", "updated_at",
	"content_unavailable_reason", "failures",
}

// FileWriter handles writing harvested records to files
type FileWriter struct {
	outputDir string
	runID     string
	now       func() time.Time
}

// New creates a new FileWriter instance
func New(outputDir, runID string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir, runID: runID, now: time.Now}, nil
}

// Filename returns the flat file name for this run
func (w *FileWriter) Filename() string {
	return "articles_" + w.stem() + ".csv"
}

// SummaryFilename returns the summary file name for this run
func (w *FileWriter) SummaryFilename() string {
	return "summary_" + w.stem() + ".json"
}

func (w *FileWriter) stem() string {
	name := w.now().Format("20060102_150405")
	if id := w.sanitizeFilename(w.runID); id != "" {
		name += "_" + id[:min(len(id), 8)]
	}
	return name
}

// WriteCSV writes one row per record and returns the file path
func (w *FileWriter) WriteCSV(records []common.ArticleRecord) (string, error) {
	path := filepath.Join(w.outputDir, w.Filename())

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(bom); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(Header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return "", fmt.Errorf("failed to write record %s: %w", r.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush records: %w", err)
	}

	return path, nil
}

// WriteSummary writes the run summary next to the flat file
func (w *FileWriter) WriteSummary(summary common.Summary) (string, error) {
	path := filepath.Join(w.outputDir, w.SummaryFilename())

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	return path, nil
}

func row(r common.ArticleRecord) []string {
	rank := ""
	if r.Rank > 0 {
		rank = strconv.Itoa(r.Rank)
	}
	failures := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, f.Field+":"+f.Kind)
	}
	return []string{
		r.Site,
		r.Title,
		r.Summary,
		r.URL,
		r.Publisher,
		r.Category1,
		r.Category2,
		rank,
		formatTime(&r.ScrapedAt),
		r.ArticleID,
		r.Content,
		r.Writer,
		formatTime(r.PublishedAt),
		formatTime(r.UpdatedAt),
		r.UnavailableReason,
		strings.Join(failures, ";"),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// sanitizeFilename keeps only characters safe in file names
func (w *FileWriter) sanitizeFilename(s string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "-"}
	for _, char := range unsafe {
		s = strings.ReplaceAll(s, char, "")
	}
	return s
}
