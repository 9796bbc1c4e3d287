package writer

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

func newWriter(t *testing.T) *FileWriter {
	t.Helper()
	w, err := New(filepath.Join(t.TempDir(), "output"), "3f2a9c1e-7b4d-4e8f-9a21-5c6d7e8f9a0b")
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2024, 3, 5, 15, 21, 0, 0, time.UTC) }
	return w
}

func TestFilename(t *testing.T) {
	w := newWriter(t)
	assert.Equal(t, "articles_20240305_152100_3f2a9c1e.csv", w.Filename())
	assert.Equal(t, "summary_20240305_152100_3f2a9c1e.json", w.SummaryFilename())
}

func TestWriteCSV(t *testing.T) {
	w := newWriter(t)
	published := time.Date(2024, 3, 5, 15, 21, 0, 0, time.UTC)
	records := []common.ArticleRecord{
		{
			Site:        "네이버뉴스",
			Title:       "제목, 쉼표 포함",
			URL:         "https://n.news.naver.com/mnews/article/001/0014567890",
			Publisher:   "연합뉴스",
			Category1:   "정치",
			Category2:   "대통령실",
			ScrapedAt:   published,
			ArticleID:   "001_0014567890",
			Content:     "첫 줄\n둘째 줄",
			Writer:      "홍길동 기자",
			PublishedAt: &published,
		},
		{
			URL:               "https://n.news.naver.com/mnews/error",
			Rank:              3,
			UnavailableReason: "삭제된 기사입니다.",
			Failures:          []common.FieldFailure{{Field: "article_id", Kind: common.KindUnavailable}},
		},
	}

	path, err := w.WriteCSV(records)
	require.NoError(t, err)
	assert.Equal(t, "articles_20240305_152100_3f2a9c1e.csv", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), bom))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), bom))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	assert.Equal(t, "제목, 쉼표 포함", rows[1][1])
	assert.Equal(t, "첫 줄\n둘째 줄", rows[1][10])
	assert.Equal(t, "2024-03-05 15:21:00", rows[1][12])
	assert.Empty(t, rows[1][13])
	assert.Empty(t, rows[1][7])

	assert.Equal(t, "3", rows[2][7])
	assert.Empty(t, rows[2][8])
	assert.Equal(t, "삭제된 기사입니다.", rows[2][14])
	assert.Equal(t, "article_id:content_unavailable", rows[2][15])
}

func TestWriteSummary(t *testing.T) {
	w := newWriter(t)

	path, err := w.WriteSummary(common.Summary{RunID: "run", Stubs: 3, Complete: 2, Unavailable: 1})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got common.Summary
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 3, got.Stubs)
	assert.Equal(t, 1, got.Unavailable)
	assert.Equal(t, "summary_20240305_152100_3f2a9c1e.json", filepath.Base(path))
}

func TestWriteSummaryKeepsEarlierRuns(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 5, 15, 21, 0, 0, time.UTC)

	var paths []string
	for _, runID := range []string{"aaaaaaaa-1", "bbbbbbbb-2"} {
		w, err := New(dir, runID)
		require.NoError(t, err)
		w.now = func() time.Time { return at }

		path, err := w.WriteSummary(common.Summary{RunID: runID})
		require.NoError(t, err)
		paths = append(paths, path)
	}

	assert.NotEqual(t, paths[0], paths[1])
	for _, path := range paths {
		assert.FileExists(t, path)
	}
}
