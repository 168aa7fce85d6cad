package llm

import (
	"fmt"
	"strings"

	"dutch-tutor/internal/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	GeminiModel        string
	GeminiBaseURL      string
	OpenaiBaseURL      string
	OpenaiModel        string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexFolderID     string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GeminiModel:        cfg.GeminiModel,
		GeminiBaseURL:      cfg.GeminiBaseURL,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenaiModel:        cfg.OpenAIModel,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		return NewGemini(f.GeminiModel, f.GeminiBaseURL), nil
	case ProviderOpenAI:
		return NewOpenAI(f.OpenaiBaseURL, f.OpenaiModel, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case ProviderYandex:
		if f.YandexFolderID == "" {
			return nil, fmt.Errorf("yandex provider requires YANDEX_FOLDER_ID")
		}
		return NewYandex(f.YandexFolderID), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
