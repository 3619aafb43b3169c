package infrastructure

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// News source kinds accepted by NEWS_SOURCE
const (
	NewsSourceMock   = "mock"
	NewsSourceTavily = "tavily"
	NewsSourceRSS    = "rss"
)

var validate = validator.New()

// Config holds all configuration for the application
type Config struct {
	// Search / LLM credentials
	TavilyAPIKey   string `json:"-"` // Don't expose in JSON
	TavilyBaseURL  string `json:"tavily_base_url"`
	DeepSeekAPIKey string `json:"-"`
	LLMBaseURL     string `json:"llm_base_url"`
	LLMModel       string `json:"llm_model"`

	// News sources
	NewsSource    string `json:"news_source"`
	GeneralRSSURL string `json:"general_rss_url"`
	DomainRSSURL  string `json:"domain_rss_url"`

	// Delivery channels
	WeChat   WeChatConfig   `json:"wechat"`
	Email    EmailConfig    `json:"email"`
	PushPlus PushPlusConfig `json:"pushplus"`

	// Delivery failure turns into a non-zero exit status
	DeliveryStrict bool `json:"delivery_strict"`

	LogLevel string `json:"log_level"`

	// Server settings
	Port             string `json:"port"`
	Host             string `json:"host"`
	TriggerAuthToken string `json:"-"`
	Schedule         string `json:"schedule"`
	Timezone         string `json:"timezone"`

	// EnvFile is the dotenv file that was loaded, empty if none was found
	EnvFile string `json:"env_file"`
}

// WeChatConfig is the WeChat test account credential group
type WeChatConfig struct {
	AppID      string `json:"app_id" validate:"required"`
	AppSecret  string `json:"-" validate:"required"`
	OpenID     string `json:"openid" validate:"required"`
	TemplateID string `json:"template_id" validate:"required"`
	BaseURL    string `json:"base_url"`
}

// EmailConfig is the SMTP relay credential group
type EmailConfig struct {
	SMTPServer string `json:"smtp_server" validate:"required"`
	SMTPPort   int    `json:"smtp_port"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"-" validate:"required"`
	To         string `json:"to" validate:"required"`
	FromName   string `json:"from_name"`
}

// PushPlusConfig is the push gateway credential group
type PushPlusConfig struct {
	Token string `json:"-" validate:"required"`
	URL   string `json:"url"`
}

// Complete reports whether every required WeChat key is present
func (w WeChatConfig) Complete() bool {
	return validate.Struct(w) == nil
}

// Complete reports whether every required email key is present
func (e EmailConfig) Complete() bool {
	return validate.Struct(e) == nil
}

// Complete reports whether the PushPlus token is present
func (p PushPlusConfig) Complete() bool {
	return validate.Struct(p) == nil
}

// Load reads configuration from environment variables and the given .env file
func Load(envFile string) (*Config, error) {
	loaded := ""
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			loaded = envFile
		}
	}

	smtpPort, err := getEnvOrDefaultInt("EMAIL_SMTP_PORT", 465)
	if err != nil {
		return nil, &ConfigError{Field: "EMAIL_SMTP_PORT", Message: "must be an integer"}
	}

	strict, err := getEnvOrDefaultBool("DELIVERY_STRICT", false)
	if err != nil {
		return nil, &ConfigError{Field: "DELIVERY_STRICT", Message: "must be a boolean"}
	}

	config := &Config{
		TavilyAPIKey:   getEnvOrDefault("TAVILY_API_KEY", ""),
		TavilyBaseURL:  getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
		DeepSeekAPIKey: getEnvOrDefault("DEEPSEEK_API_KEY", ""),
		LLMBaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://api.deepseek.com"),
		LLMModel:       getEnvOrDefault("LLM_MODEL", "deepseek-chat"),
		NewsSource:     strings.ToLower(getEnvOrDefault("NEWS_SOURCE", NewsSourceMock)),
		GeneralRSSURL:  getEnvOrDefault("GENERAL_RSS_URL", ""),
		DomainRSSURL:   getEnvOrDefault("DOMAIN_RSS_URL", ""),
		WeChat: WeChatConfig{
			AppID:      getEnvOrDefault("WECHAT_APP_ID", ""),
			AppSecret:  getEnvOrDefault("WECHAT_APP_SECRET", ""),
			OpenID:     getEnvOrDefault("WECHAT_OPENID", ""),
			TemplateID: getEnvOrDefault("WECHAT_TEMPLATE_ID", ""),
			BaseURL:    getEnvOrDefault("WECHAT_API_BASE_URL", "https://api.weixin.qq.com"),
		},
		Email: EmailConfig{
			SMTPServer: getEnvOrDefault("EMAIL_SMTP_SERVER", "smtp.qq.com"),
			SMTPPort:   smtpPort,
			Username:   getEnvOrDefault("EMAIL_USERNAME", ""),
			Password:   getEnvOrDefault("EMAIL_PASSWORD", ""),
			To:         getEnvOrDefault("EMAIL_TO", ""),
			FromName:   getEnvOrDefault("EMAIL_FROM_NAME", "每日新闻推送"),
		},
		PushPlus: PushPlusConfig{
			Token: getEnvOrDefault("PUSHPLUS_TOKEN", ""),
			URL:   getEnvOrDefault("PUSHPLUS_URL", "http://pushplus.hxtrip.com/send"),
		},
		DeliveryStrict:   strict,
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		Port:             getEnvOrDefault("PORT", "8080"),
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		TriggerAuthToken: getEnvOrDefault("TRIGGER_AUTH_TOKEN", ""),
		Schedule:         getEnvOrDefault("DIGEST_SCHEDULE", "0 8 * * *"),
		Timezone:         getEnvOrDefault("DIGEST_TIMEZONE", "Asia/Shanghai"),
		EnvFile:          loaded,
	}

	return config, config.validate()
}

// validate checks values that cannot be repaired with a default
func (c *Config) validate() error {
	switch c.NewsSource {
	case NewsSourceMock, NewsSourceTavily, NewsSourceRSS:
	default:
		return &ConfigError{Field: "NEWS_SOURCE", Message: "must be one of mock, tavily, rss"}
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return &ConfigError{Field: "EMAIL_SMTP_PORT", Message: "must be between 1 and 65535"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvOrDefaultBool(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
