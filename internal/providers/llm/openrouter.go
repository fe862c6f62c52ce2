package llm

import "github.com/sandevgo/recallbot/internal/core"

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(baseURL, apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.RepositoryURL,
				"X-Title":      core.BotName,
			},
		}),
	}
}
