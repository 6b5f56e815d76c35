package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// RemoteConfig configures an OpenAI-compatible embeddings endpoint.
type RemoteConfig struct {
	BaseURL    string
	Token      string
	Model      string
	Dimensions int // optional; learned from the first response when 0
	// InputTypes sends input_type "query" from Embed and "passage" from EmbedBatch.
	InputTypes bool
	// Transport overrides the HTTP transport; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// RemoteEmbedder calls an external embedding service through langchaingo.
type RemoteEmbedder struct {
	embedder   embeddings.Embedder
	inputTypes bool
	dimensions atomic.Int64
}

// NewRemoteEmbedder creates an embedder backed by the langchaingo OpenAI client.
// Works with any OpenAI-compatible API such as NVIDIA NIM.
func NewRemoteEmbedder(cfg RemoteConfig) (*RemoteEmbedder, error) {
	if cfg.Token == "" {
		return nil, models.InvalidArgument("token", "embedding provider credential is empty")
	}
	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Token, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.InputTypes {
		opts = append(opts, openai.WithHTTPClient(newInputTypeClient(cfg.Transport)))
	} else if cfg.Transport != nil {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Transport: cfg.Transport}))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	e := NewRemoteEmbedderFrom(emb, cfg.Dimensions)
	e.inputTypes = cfg.InputTypes
	return e, nil
}

// NewRemoteEmbedderFrom wraps an existing langchaingo embedder.
func NewRemoteEmbedderFrom(emb embeddings.Embedder, dimensions int) *RemoteEmbedder {
	e := &RemoteEmbedder{embedder: emb}
	e.dimensions.Store(int64(dimensions))
	return e
}

// Embed returns the embedding for a search query.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.inputTypes {
		ctx = withInputType(ctx, InputTypeQuery)
	}
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, providerError(err)
	}
	if len(vec) == 0 {
		return nil, &models.ProviderError{Reason: models.ReasonBadResponse, Err: fmt.Errorf("empty embedding returned")}
	}
	e.dimensions.CompareAndSwap(0, int64(len(vec)))
	return vec, nil
}

// EmbedBatch embeds document passages in one provider call.
func (e *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.inputTypes {
		ctx = withInputType(ctx, InputTypePassage)
	}
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, providerError(err)
	}
	if len(vecs) != len(texts) {
		return nil, &models.ProviderError{
			Reason: models.ReasonBadResponse,
			Err:    fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(texts)),
		}
	}
	return vecs, nil
}

// Dimensions returns the configured or learned dimension (0 before the first call when unconfigured).
func (e *RemoteEmbedder) Dimensions() int {
	return int(e.dimensions.Load())
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *RemoteEmbedder) Close() error {
	return nil
}
