package news

import (
	"context"
	"fmt"

	"github.com/pep299/daily-news-digest/internal/model"
)

// Mock serves fixed headlines in place of a live search call.
type Mock struct {
	fixtures map[string][]model.NewsItem
}

// NewMock creates a Mock source with the built-in fixtures
func NewMock() *Mock {
	return &Mock{
		fixtures: map[string][]model.NewsItem{
			model.TopicGeneral: generalFixtures,
			model.TopicDomain:  domainFixtures,
		},
	}
}

func (m *Mock) Fetch(ctx context.Context, topic model.Topic) ([]model.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, ok := m.fixtures[topic.Key]
	if !ok {
		return nil, fmt.Errorf("no fixtures for topic %q", topic.Key)
	}

	out := make([]model.NewsItem, len(items))
	copy(out, items)
	return limit(out, topic.Limit), nil
}

var generalFixtures = []model.NewsItem{
	{
		Title:   "人工智能技术在医疗领域取得重大突破",
		URL:     "https://example.com/news1",
		Content: "最新的AI诊断系统在多个疾病的早期检测中表现出色，准确率超过95%。",
	},
	{
		Title:   "全球气候峰会达成新的碳排放协议",
		URL:     "https://example.com/news2",
		Content: "各国代表在峰会上签署了历史性的气候协议，承诺在2030年前减少50%的碳排放。",
	},
	{
		Title:   "新能源汽车销量创历史新高",
		URL:     "https://example.com/news3",
		Content: "得益于技术进步和政策支持，全球新能源汽车销量同比增长150%。",
	},
	{
		Title:   "SpaceX成功发射新一代星际飞船",
		URL:     "https://example.com/news4",
		Content: "SpaceX的星际飞船在今天成功发射，标志着太空探索进入新纪元。",
	},
	{
		Title:   "元宇宙技术应用扩展到教育领域",
		URL:     "https://example.com/news5",
		Content: "多所顶尖大学开始采用元宇宙技术进行沉浸式教学，学生参与度大幅提升。",
	},
}

var domainFixtures = []model.NewsItem{
	{
		Title:   "OpenAI发布新一代GPT-5模型，性能大幅提升",
		URL:     "https://example.com/ai1",
		Content: "GPT-5在推理能力和多模态处理方面有了质的飞跃，引发行业广泛关注。",
	},
	{
		Title:   "中国AI芯片企业突破7nm制程技术",
		URL:     "https://example.com/ai2",
		Content: "国产AI芯片在性能和能效方面取得重大突破，有望打破国际技术垄断。",
	},
	{
		Title:   "AI大模型在企业级应用市场快速增长",
		URL:     "https://example.com/ai3",
		Content: "越来越多的企业开始采用AI大模型优化业务流程，预计市场规模将在3年内增长10倍。",
	},
}
