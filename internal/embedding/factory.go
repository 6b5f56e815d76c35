package embedding

import (
	"fmt"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// New builds the configured embedder: the provider, wrapped with retries for remote
// providers, then an LRU cache. token is only used by the remote provider.
func New(cfg *config.EmbeddingConfig, token string, logger *zap.Logger) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case config.ProviderHashing:
		base = NewHashingEmbedder(cfg.Dimensions)
	case config.ProviderOpenAI, "":
		remote, err := NewRemoteEmbedder(RemoteConfig{
			BaseURL:    cfg.BaseURL,
			Token:      token,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			InputTypes: cfg.SendInputTypes(),
		})
		if err != nil {
			return nil, err
		}
		policy := utils.DefaultRetryPolicy
		policy.MaxAttempts = cfg.MaxAttempts
		base = NewRetryingEmbedder(remote, policy, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, hashing)", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(base, cfg.CacheSize), nil
	}
	return base, nil
}
