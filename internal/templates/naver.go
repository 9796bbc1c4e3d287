package templates

// Portal describes where the taxonomy lives on the home page
type Portal struct {
	Categories    string
	SubCategories string
	// Categories whose URL contains DateScoped have no sub-categories and
	// take a date query parameter.
	DateScoped string
	DateParam  string
	DateLayout string
}

// NaverPortal is the taxonomy layout of news.naver.com.
var NaverPortal = Portal{
	Categories:    "li.Nlist_item > a",
	SubCategories: "li.ct_snb_nav_item > a",
	DateScoped:    "ranking",
	DateParam:     "date",
	DateLayout:    "20060102",
}

var naverLists = []ListTemplate{
	{
		Section:       SectionNews,
		Match:         "section",
		ListContainer: ".newsct_wrapper",
		Category1:     "li.Nlist_item.is_active > a > span",
		Category2:     "li.ct_snb_nav_item.is_selected > a",
		LoadMore:      ".section_more",
		Item:          ".sa_text",
		Title:         ".sa_text_strong",
		Summary:       ".sa_text_lede",
		Link:          "a",
		Publisher:     ".sa_text_press",
	},
	{
		Section:        SectionRanking,
		Match:          "ranking",
		ListContainer:  ".rankingnews_box_wrap",
		Category1:      "li.Nlist_item.is_active > a > span",
		Category2:      "li.on > a > span.tx",
		LoadMore:       ".button_rankingnews_more",
		Rank:           ".list_ranking_num",
		Item:           ".rankingnews_list > li",
		Title:          ".list_title",
		Link:           "a",
		Publisher:      ".rankingnews_name",
		PublisherScope: ".rankingnews_box",
	},
}

var naverContents = []ContentTemplate{
	{
		Site:          SiteNews,
		Match:         "n.news.naver.com",
		Container:     ".newsct_wrapper",
		Body:          "article",
		IDScript:      "article.articleId",
		Bylines:       []string{".media_end_head_journalist_name", ".byline_p"},
		DateContainer: ".media_end_head_info_datestamp",
		Notice:        ".error_msg",
	},
	{
		Site:          SiteEntertain,
		Match:         "entertain.naver.com",
		Container:     ".end_ct",
		Body:          "#articeBody",
		Bylines:       []string{".byline", ".journalistcard_summary_name"},
		DateContainer: ".article_info",
		Notice:        ".error_msg",
	},
	{
		Site:          SiteSports,
		Match:         "sports.naver.com",
		Container:     ".news_end",
		Body:          "#newsEndContents",
		Bylines:       []string{".byline", ".reporter"},
		DateContainer: ".info",
		Notice:        ".error_msg",
	},
}

// DefaultRegistry returns the templates for the Naver news portal.
func DefaultRegistry() *Registry {
	return NewRegistry(naverLists, naverContents)
}
