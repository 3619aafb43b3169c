package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository"
)

const (
	systemPrompt = "你是一个专业的新闻编辑，擅长将复杂的新闻内容总结成简洁易读的简报。"

	summaryMaxTokens   = 2000
	summaryTemperature = 0.7

	// FallbackNotice closes every locally generated summary
	FallbackNotice = "💡 提示：此为自动生成的简报，如需更详细的AI总结，请检查API配置。"
)

// Summarizer turns the collected headlines into one digest text.
type Summarizer struct {
	llm    repository.LLMRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewSummarizer(llm repository.LLMRepository, logger zerolog.Logger) *Summarizer {
	return &Summarizer{
		llm:    llm,
		logger: logger,
		now:    time.Now,
	}
}

// Summarize asks the chat model for a digest and falls back to a local
// rendering on any failure, so it always returns a non-empty text.
func (s *Summarizer) Summarize(ctx context.Context, general, domain []model.NewsItem) string {
	s.logger.Info().Msg("📝 步骤3：使用AI总结新闻...")

	prompt, err := buildPrompt(general, domain)
	if err != nil {
		s.logger.Error().Err(err).Msg("❌ 构建提示词失败")
		return FallbackSummary(s.now(), general, domain)
	}

	summary, err := s.llm.Complete(ctx, repository.ChatRequest{
		Messages: []repository.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("❌ 使用DeepSeek总结时出错")
		return FallbackSummary(s.now(), general, domain)
	}
	if strings.TrimSpace(summary) == "" {
		s.logger.Warn().Msg("⚠️  模型返回了空内容，使用默认简报")
		return FallbackSummary(s.now(), general, domain)
	}

	s.logger.Info().Msg("✅ 新闻总结完成")
	return summary
}

func buildPrompt(general, domain []model.NewsItem) (string, error) {
	payload := struct {
		General []model.NewsItem `json:"全球热点"`
		Domain  []model.NewsItem `json:"AI行业动态"`
	}{general, domain}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encoding news payload: %w", err)
	}

	return "请将以下新闻内容总结成一篇简洁的每日新闻简报：\n\n" +
		"新闻内容：\n" +
		strings.TrimRight(buf.String(), "\n") + "\n\n" +
		"请按照以下格式总结：\n" +
		"1. 今日全球热点新闻（3-5条）\n" +
		"2. AI行业动态（3条）\n" +
		"3. 今日关注焦点\n\n" +
		"请用简洁的语言总结，每条新闻不超过两句话。", nil
}

// FallbackSummary renders the headlines without a model.
func FallbackSummary(now time.Time, general, domain []model.NewsItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📰 每日新闻简报 - %s\n\n", now.Format("2006年01月02日"))

	b.WriteString("🌍 全球热点新闻：\n")
	writeItems(&b, general)

	b.WriteString("🤖 AI行业动态：\n")
	writeItems(&b, domain)

	b.WriteString(FallbackNotice)
	return b.String()
}

func writeItems(b *strings.Builder, items []model.NewsItem) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n   %s\n\n", i+1, item.Title, item.Content)
	}
}
