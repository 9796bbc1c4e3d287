package common

import (
	"time"
)

// NoWriter is stored when none of a template's byline selectors match
const NoWriter = "작성자 정보 없음"

// CategoryRef is a top-level entry of the portal taxonomy
type CategoryRef struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	DateScoped bool   `json:"date_scoped"`
}

// SubCategoryRef is a child of a CategoryRef
type SubCategoryRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ArticleStub holds what a list page tells us about one article
type ArticleStub struct {
	Site      string    `json:"site"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	URL       string    `json:"url"`
	Publisher string    `json:"publisher"`
	Category1 string    `json:"category1"`
	Category2 string    `json:"category2,omitempty"`
	Rank      int       `json:"rank,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// FieldFailure records why a field of an article could not be extracted
type FieldFailure struct {
	Field   string `json:"field" bson:"field"`
	Kind    string `json:"kind" bson:"kind"`
	Message string `json:"message" bson:"message"`
}

// ArticleContent is the result of fetching one article page. Fields after the
// first failure are left empty.
type ArticleContent struct {
	URL               string         `json:"url"`
	ArticleID         string         `json:"article_id,omitempty"`
	Content           string         `json:"content,omitempty"`
	Writer            string         `json:"writer,omitempty"`
	PublishedAt       *time.Time     `json:"published_at,omitempty"`
	UpdatedAt         *time.Time     `json:"updated_at,omitempty"`
	UnavailableReason string         `json:"content_unavailable_reason,omitempty"`
	Failures          []FieldFailure `json:"failures,omitempty"`
}

// Fail records a failed field, classifying the error.
func (c *ArticleContent) Fail(field string, err error) {
	c.Failures = append(c.Failures, FieldFailure{
		Field:   field,
		Kind:    Kind(err),
		Message: err.Error(),
	})
}

// Complete reports whether every field was extracted
func (c ArticleContent) Complete() bool {
	return len(c.Failures) == 0 && c.UnavailableReason == ""
}

// ArticleRecord is a stub merged with its content. It is handed to the
// persistence adapters and never modified afterwards.
type ArticleRecord struct {
	Site              string         `json:"site" bson:"site"`
	Title             string         `json:"title" bson:"title"`
	Summary           string         `json:"summary,omitempty" bson:"summary,omitempty"`
	URL               string         `json:"url" bson:"url"`
	Publisher         string         `json:"publisher" bson:"publisher"`
	Category1         string         `json:"category1" bson:"category1"`
	Category2         string         `json:"category2,omitempty" bson:"category2,omitempty"`
	Rank              int            `json:"rank,omitempty" bson:"rank,omitempty"`
	ScrapedAt         time.Time      `json:"scraped_at" bson:"scraped_at"`
	ArticleID         string         `json:"article_id,omitempty" bson:"article_id,omitempty"`
	Content           string         `json:"content,omitempty" bson:"content,omitempty"`
	Writer            string         `json:"writer,omitempty" bson:"writer,omitempty"`
	PublishedAt       *time.Time     `json:"published_at,omitempty" bson:"published_at,omitempty"`
	UpdatedAt         *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	UnavailableReason string         `json:"content_unavailable_reason,omitempty" bson:"content_unavailable_reason,omitempty"`
	Failures          []FieldFailure `json:"failures,omitempty" bson:"failures,omitempty"`
}

// NewRecord builds a record from a stub and, if present, its content.
func NewRecord(stub ArticleStub, content *ArticleContent) ArticleRecord {
	r := ArticleRecord{
		Site:      stub.Site,
		Title:     stub.Title,
		Summary:   stub.Summary,
		URL:       stub.URL,
		Publisher: stub.Publisher,
		Category1: stub.Category1,
		Category2: stub.Category2,
		Rank:      stub.Rank,
		ScrapedAt: stub.ScrapedAt,
	}
	if content == nil {
		return r
	}
	r.ArticleID = content.ArticleID
	r.Content = content.Content
	r.Writer = content.Writer
	r.PublishedAt = content.PublishedAt
	r.UpdatedAt = content.UpdatedAt
	r.UnavailableReason = content.UnavailableReason
	r.Failures = content.Failures
	return r
}

// Summary is reported at the end of a run
type Summary struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Categories  int           `json:"categories"`
	Stubs       int           `json:"stubs"`
	Attempted   int           `json:"attempted"`
	Complete    int           `json:"complete"`
	Partial     int           `json:"partial"`
	Unavailable int           `json:"unavailable"`
	Saved       int           `json:"saved"`
	FlatFile    string        `json:"flat_file,omitempty"`
	Transferred string        `json:"transferred,omitempty"`
}
