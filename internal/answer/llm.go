package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LLMConfig configures an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL     string
	Token       string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLMSynthesizer answers questions with a langchaingo chat model. Prior chat turns are
// sent as conversation messages ahead of the rendered prompt.
type LLMSynthesizer struct {
	model   llms.Model
	prompt  *Prompt
	options []llms.CallOption
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an LLMSynthesizer.
type Option func(*LLMSynthesizer)

// WithLogger sets a logger for request debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *LLMSynthesizer) { s.logger = l }
}

// WithCallOptions adds langchaingo call options to every request.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(s *LLMSynthesizer) { s.options = append(s.options, opts...) }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(s *LLMSynthesizer) { s.timeout = d }
}

// NewLLMSynthesizer creates a synthesizer backed by the langchaingo OpenAI client.
// Works with any OpenAI-compatible API such as NVIDIA NIM.
func NewLLMSynthesizer(cfg LLMConfig, prompt *Prompt, opts ...Option) (*LLMSynthesizer, error) {
	if cfg.Token == "" {
		return nil, models.InvalidArgument("token", "language model credential is empty")
	}
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Token, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init chat client: %w", err)
	}
	callOpts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	opts = append([]Option{WithCallOptions(callOpts...), WithTimeout(cfg.Timeout)}, opts...)
	return NewLLMSynthesizerFrom(llm, prompt, opts...), nil
}

// NewLLMSynthesizerFrom wraps an existing langchaingo model. A nil prompt uses DefaultTemplate.
func NewLLMSynthesizerFrom(model llms.Model, prompt *Prompt, opts ...Option) *LLMSynthesizer {
	if prompt == nil {
		prompt, _ = NewPrompt("")
	}
	s := &LLMSynthesizer{model: model, prompt: prompt}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.LoggerOrNop(s.logger)
	return s
}

// Answer renders the prompt over contextChunks and asks the model. The returned
// UsedContext is contextChunks, in the order given.
func (s *LLMSynthesizer) Answer(ctx context.Context, question string, contextChunks []models.Chunk, history []models.ChatTurn) (*models.AnswerResult, error) {
	text, err := s.prompt.Format(question, contextChunks)
	if err != nil {
		return nil, &models.SynthesisError{Reason: models.ReasonBadResponse, Err: err}
	}
	messages := make([]llms.MessageContent, 0, len(history)+1)
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, text))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := s.model.GenerateContent(ctx, messages, s.options...)
	if err != nil {
		reason, retryable := models.ClassifyRemoteError(err)
		return nil, &models.SynthesisError{Reason: reason, Retryable: retryable, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &models.SynthesisError{Reason: models.ReasonBadResponse, Err: errors.New("no choices in response")}
	}
	answer := strings.TrimSpace(resp.Choices[0].Content)
	if answer == "" {
		return nil, &models.SynthesisError{Reason: models.ReasonBadResponse, Err: errors.New("empty answer")}
	}
	s.logger.Debug("answer synthesized",
		zap.Int("context_chunks", len(contextChunks)),
		zap.Int("history_turns", len(history)),
		zap.Int("prompt_len", len(text)),
		zap.Duration("duration", time.Since(start)))

	used := make([]models.Chunk, len(contextChunks))
	copy(used, contextChunks)
	return &models.AnswerResult{Text: answer, UsedContext: used}, nil
}
