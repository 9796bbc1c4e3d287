// Package templates holds the extraction rules for each page family of the
// portal and resolves which rules apply to a URL.
package templates

import "strings"

// Section identifies a list-page family
type Section int

const (
	SectionNews Section = iota
	SectionRanking
)

func (s Section) String() string {
	switch s {
	case SectionNews:
		return "section"
	case SectionRanking:
		return "ranking"
	default:
		return "unknown"
	}
}

// Site identifies a content-page family
type Site int

const (
	SiteNews Site = iota
	SiteEntertain
	SiteSports
)

func (s Site) String() string {
	switch s {
	case SiteNews:
		return "news"
	case SiteEntertain:
		return "entertain"
	case SiteSports:
		return "sports"
	default:
		return "unknown"
	}
}

// DateTag is the tag family that carries timestamps inside a date container
type DateTag int

const (
	DateTagSpan DateTag = iota
	DateTagEm
)

// Selector returns the CSS selector for the tag family.
func (t DateTag) Selector() string {
	if t == DateTagEm {
		return "em"
	}
	return "span"
}

// DateTagFor picks the tag family a site uses for its timestamps.
func DateTagFor(site Site) DateTag {
	switch site {
	case SiteEntertain:
		return DateTagEm
	case SiteNews, SiteSports:
		return DateTagSpan
	default:
		return DateTagSpan
	}
}

// ListTemplate describes an article list page
type ListTemplate struct {
	Section Section
	Match   string

	ListContainer string
	Category1     string
	Category2     string // optional
	LoadMore      string
	Rank          string // optional

	Item      string
	Title     string
	Summary   string // optional
	Link      string
	Publisher string
	// Ancestor searched for the publisher when the item has none
	PublisherScope string
}

// ContentTemplate describes an article page
type ContentTemplate struct {
	Site  Site
	Match string

	Container string
	Body      string
	// Expression evaluated in the page for the article id; empty means
	// the id is derived from the URL.
	IDScript      string
	Bylines       []string
	DateContainer string
	Notice        string
}

// DateTag returns the tag family for the template's site.
func (t ContentTemplate) DateTag() DateTag {
	return DateTagFor(t.Site)
}

// Registry is an ordered set of templates. Lookups return the first template
// whose Match is a substring of the URL.
type Registry struct {
	lists    []ListTemplate
	contents []ContentTemplate
}

// NewRegistry builds a registry; order is lookup order.
func NewRegistry(lists []ListTemplate, contents []ContentTemplate) *Registry {
	return &Registry{lists: lists, contents: contents}
}

// List resolves the list template for url.
func (r *Registry) List(url string) (ListTemplate, bool) {
	for _, t := range r.lists {
		if strings.Contains(url, t.Match) {
			return t, true
		}
	}
	return ListTemplate{}, false
}

// Content resolves the content template for url.
func (r *Registry) Content(url string) (ContentTemplate, bool) {
	for _, t := range r.contents {
		if strings.Contains(url, t.Match) {
			return t, true
		}
	}
	return ContentTemplate{}, false
}
