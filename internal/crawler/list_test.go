package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arovil7777/naver-news-crawling/internal/browser/browsertest"
	"github.com/arovil7777/naver-news-crawling/internal/templates"
)

const sectionURL = "https://news.naver.com/breakingnews/section/100/264"

var quiet = log.New(io.Discard)

// sectionPage renders a section list page with n items and, if more is set,
// a "load more" trigger.
func sectionPage(n int, more bool) string {
	var b strings.Builder
	b.WriteString(`<html><body>
<ul><li class="Nlist_item is_active"><a><span>정치</span></a></li></ul>
<ul><li class="ct_snb_nav_item is_selected"><a>대통령실</a></li></ul>
<div class="newsct_wrapper">`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<div class="sa_text"><a href="/mnews/article/001/%010d"><strong class="sa_text_strong">Title %d</strong></a>
<div class="sa_text_lede">Lede %d</div><div class="sa_text_press">연합뉴스</div></div>`, i, i, i)
	}
	if more {
		b.WriteString(`<div class="section_more"><a>기사 더보기</a></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// paginated returns a page that grows by step items per click and loses its
// trigger after clicks activations.
func paginated(initial, step, clicks int) *browsertest.Page {
	shown := initial
	return &browsertest.Page{
		Title: "정치 : 네이버 뉴스",
		HTML:  sectionPage(shown, clicks > 0),
		OnClick: map[string]func(*browsertest.Page){
			".section_more": func(p *browsertest.Page) {
				shown += step
				p.HTML = sectionPage(shown, p.Clicks < clicks)
			},
		},
	}
}

func newListCrawler(maxLoadMore int) *ListCrawler {
	c := NewListCrawler(templates.NewCache(templates.DefaultRegistry()), DefaultTimeouts, maxLoadMore, quiet)
	c.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }
	return c
}

func crawlList(t *testing.T, c *ListCrawler, url string, page *browsertest.Page) []stubView {
	t.Helper()
	factory := browsertest.NewFactory(nil)
	if page != nil {
		factory.Add(url, page)
	}
	session, err := factory.NewSession(context.Background())
	require.NoError(t, err)
	defer session.Close()

	var out []stubView
	for _, s := range c.Crawl(context.Background(), session, url) {
		out = append(out, stubView{s.Title, s.URL, s.Publisher, s.Category1, s.Category2, s.Site, s.Summary, s.Rank})
	}
	return out
}

type stubView struct {
	Title, URL, Publisher, Category1, Category2, Site, Summary string
	Rank                                                       int
}

func TestListCrawlExtractsStubs(t *testing.T) {
	c := newListCrawler(10)
	factory := browsertest.NewFactory(map[string]*browsertest.Page{
		sectionURL: {Title: "정치 : 네이버 뉴스", HTML: sectionPage(2, false)},
	})
	session, err := factory.NewSession(context.Background())
	require.NoError(t, err)

	stubs := c.Crawl(context.Background(), session, sectionURL)
	require.Len(t, stubs, 2)

	first := stubs[0]
	assert.Equal(t, "Title 1", first.Title)
	assert.Equal(t, "Lede 1", first.Summary)
	assert.Equal(t, "https://news.naver.com/mnews/article/001/0000000001", first.URL)
	assert.Equal(t, "연합뉴스", first.Publisher)
	assert.Equal(t, "정치", first.Category1)
	assert.Equal(t, "대통령실", first.Category2)
	assert.Equal(t, "네이버뉴스", first.Site)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), first.ScrapedAt)
}

func TestListCrawlPaginationIsCumulative(t *testing.T) {
	page := paginated(10, 10, 3)
	got := crawlList(t, newListCrawler(50), sectionURL, page)

	assert.Equal(t, 3, page.Clicks)
	assert.Len(t, got, 40)
	assert.Equal(t, "Title 40", got[39].Title)
}

func TestListCrawlWithoutTrigger(t *testing.T) {
	page := paginated(7, 10, 0)
	got := crawlList(t, newListCrawler(50), sectionURL, page)

	assert.Equal(t, 0, page.Clicks)
	assert.Len(t, got, 7)
}

func TestListCrawlStopsAtCap(t *testing.T) {
	// The trigger never disappears.
	page := paginated(10, 1, 1000)
	got := crawlList(t, newListCrawler(5), sectionURL, page)

	assert.Equal(t, 5, page.Clicks)
	assert.Len(t, got, 15)
}

func TestListCrawlSkipsBrokenItems(t *testing.T) {
	html := strings.Replace(sectionPage(3, false),
		`<div class="sa_text_lede">Lede 2</div><div class="sa_text_press">연합뉴스</div>`,
		`<div class="sa_text_lede">Lede 2</div>`, 1)
	got := crawlList(t, newListCrawler(5), sectionURL, &browsertest.Page{HTML: html})

	require.Len(t, got, 2)
	assert.Equal(t, "Title 1", got[0].Title)
	assert.Equal(t, "Title 3", got[1].Title)
}

func TestListCrawlRecoverableFailures(t *testing.T) {
	tests := []struct {
		name string
		url  string
		page *browsertest.Page
	}{
		{"no template", "https://news.naver.com/", &browsertest.Page{HTML: sectionPage(3, false)}},
		{"container never appears", sectionURL, &browsertest.Page{HTML: `<html><body><p>maintenance</p></body></html>`}},
		{"navigation fails", sectionURL, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, crawlList(t, newListCrawler(5), tt.url, tt.page))
		})
	}
}

const rankingURL = "https://news.naver.com/main/ranking/popularDay.naver?date=20240305"

const rankingHTML = `<html><body>
<ul><li class="Nlist_item is_active"><a><span>랭킹</span></a></li></ul>
<div class="rankingnews_box_wrap">
 <div class="rankingnews_box">
  <a class="rankingnews_box_head"><strong class="rankingnews_name">KBS</strong></a>
  <ul class="rankingnews_list">
   <li><em class="list_ranking_num">1</em><div class="list_content"><a href="https://n.news.naver.com/article/056/0011111111" class="list_title">First</a></div></li>
   <li><em class="list_ranking_num">2</em><div class="list_content"><a href="https://n.news.naver.com/article/056/0011111112" class="list_title">Second</a></div></li>
  </ul>
 </div>
 <div class="rankingnews_box">
  <a class="rankingnews_box_head"><strong class="rankingnews_name">MBC</strong></a>
  <ul class="rankingnews_list">
   <li><em class="list_ranking_num">1</em><div class="list_content"><a href="https://n.news.naver.com/article/214/0022222221" class="list_title">Third</a></div></li>
  </ul>
 </div>
</div></body></html>`

func TestListCrawlRanking(t *testing.T) {
	got := crawlList(t, newListCrawler(5), rankingURL, &browsertest.Page{Title: "랭킹 : 네이버 뉴스", HTML: rankingHTML})

	require.Len(t, got, 3)
	assert.Equal(t, stubView{
		Title:     "Third",
		URL:       "https://n.news.naver.com/article/214/0022222221",
		Publisher: "MBC",
		Category1: "랭킹",
		Site:      "네이버뉴스",
		Rank:      1,
	}, got[2])
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, "KBS", got[1].Publisher)
}

func TestSiteName(t *testing.T) {
	assert.Equal(t, "네이버뉴스", siteName("정치 : 네이버 뉴스"))
	assert.Equal(t, "네이버뉴스", siteName("네이버 뉴스"))
	assert.Equal(t, "", siteName(""))
}
