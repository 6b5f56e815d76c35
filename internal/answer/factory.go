package answer

import (
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// New builds the configured synthesizer: the chat model with the configured prompt,
// wrapped with retries.
func New(cfg *config.Config, token string, logger *zap.Logger) (Synthesizer, error) {
	prompt, err := NewPrompt(cfg.Prompt.Template)
	if err != nil {
		return nil, err
	}
	llm, err := NewLLMSynthesizer(LLMConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Token:       token,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, prompt, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	policy := utils.DefaultRetryPolicy
	policy.MaxAttempts = cfg.LLM.MaxAttempts
	return NewRetryingSynthesizer(llm, policy, logger), nil
}
