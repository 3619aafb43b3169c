package model

type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Topic describes one headline fetcher.
type Topic struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	FeedURL string `json:"feed_url"`
}

const (
	TopicGeneral = "general"
	TopicDomain  = "domain"
)

var Topics = map[string]Topic{
	TopicGeneral: {
		Key:   TopicGeneral,
		Name:  "全球热点新闻",
		Query: "today's top global news",
		Limit: 5,
	},
	TopicDomain: {
		Key:   TopicDomain,
		Name:  "AI行业动态",
		Query: "AI 行业动态",
		Limit: 3,
	},
}
