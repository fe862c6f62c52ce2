package llm

type Mistral struct {
	*OpenAICompatible
}

func NewMistral(baseURL, apiKey, model string) *Mistral {
	return &Mistral{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
