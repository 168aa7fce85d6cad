package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreSQLite StoreBackend = "sqlite"
	StoreMemory StoreBackend = "memory"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	GeminiBaseURL    string      `env:"GEMINI_BASE_URL"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Generation
	Temperature     float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int           `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"1500"`
	RequestTimeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Teaching language used until the learner picks one
	TeachingLanguage string `env:"TEACHING_LANGUAGE" envDefault:"English"`

	// Storage
	StoreBackend    StoreBackend `env:"STORE_BACKEND" envDefault:"file"`
	StoreFilePath   string       `env:"STORE_FILE_PATH" envDefault:"data/store.json"`
	StoreSQLitePath string       `env:"STORE_SQLITE_PATH" envDefault:"data/tutor.db"`
	JournalFilePath string       `env:"JOURNAL_FILE_PATH" envDefault:"logs/exchanges.jsonl"`

	// Telegram front end
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOwnerID  int64  `env:"TELEGRAM_OWNER_ID"`
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"Markdown"`

	// Study reminders, disabled when empty
	ReminderCron     string `env:"REMINDER_CRON"`
	ReminderTimezone string `env:"REMINDER_TZ" envDefault:"UTC"`

	// Logging
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"`
	// LogFile receives logs instead of stderr when set
	LogFile string `env:"LOG_FILE"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderYandex:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	switch c.StoreBackend {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// Credential returns the configured credential of the active provider.
// It may be empty; the learner can then supply one at runtime.
func (c *Config) Credential() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderYandex:
		return c.YandexOAuthToken
	default:
		return c.GeminiAPIKey
	}
}

// ReminderLocation resolves REMINDER_TZ, falling back to UTC.
func (c *Config) ReminderLocation() *time.Location {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
