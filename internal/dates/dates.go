// Package dates converts the portal's timestamp strings into instants.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Layouts are tried in order.
var Layouts = []string{
	"2006.01.02. PM 3:04",
	"2006-01-02 15:04:05",
}

// KST is the portal's local time. A fixed zone keeps parsing independent of
// the host's tz database.
var KST = time.FixedZone("KST", 9*60*60)

// Normalizer parses timestamps in a fixed location
type Normalizer struct {
	Location *time.Location
}

// New returns a normalizer for loc; nil means KST.
func New(loc *time.Location) Normalizer {
	if loc == nil {
		loc = KST
	}
	return Normalizer{Location: loc}
}

// Parse returns nil for an empty string and common.ErrUnsupportedDateFormat
// when s matches none of the layouts. Meridian markers must already be ASCII.
func (n Normalizer) Parse(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	loc := n.Location
	if loc == nil {
		loc = KST
	}
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedDateFormat, s)
}

var (
	meridians = strings.NewReplacer("오전", "AM", "오후", "PM")
	dateStart = regexp.MustCompile(`\d{4}[.-]\d{1,2}[.-]\d{1,2}`)
)

// Meridian prepares raw page text for Parse: Korean meridian markers become
// AM/PM and labels such as "기사입력" before the date are dropped.
func Meridian(s string) string {
	s = meridians.Replace(strings.TrimSpace(s))
	if loc := dateStart.FindStringIndex(s); loc != nil {
		s = s[loc[0]:]
	}
	return strings.TrimSpace(s)
}
