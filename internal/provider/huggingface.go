package provider

import (
	"log/slog"
	"net/http"
)

const huggingfaceAPIBase = "https://router.huggingface.co/v1"

// NewHuggingFace creates a provider backed by the Hugging Face inference
// router, which speaks the OpenAI chat completion protocol.
func NewHuggingFace(apiKey, model string, client *http.Client, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	return NewOpenAI(OpenAIConfig{
		Name:    "huggingface",
		APIKey:  apiKey,
		APIBase: huggingfaceAPIBase,
		Model:   model,
		Client:  client,
		Logger:  logger,
	})
}
