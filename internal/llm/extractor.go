package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/rightscan/internal/cache"
	"github.com/ppiankov/rightscan/internal/model"
	"github.com/ppiankov/rightscan/internal/worker"
)

// Extractor wraps a Provider with result caching and endpoint rate limiting.
// Re-running an analysis over unchanged documents must not re-bill the
// provider, and batch mode must not hammer the API.
type Extractor struct {
	provider Provider
	store    cache.Cache     // nil disables caching
	limiter  *worker.Limiter // nil disables rate limiting
	config   Config
}

// NewExtractor creates an extractor for the configured provider. An empty
// provider name yields a disabled extractor, not an error.
func NewExtractor(config Config, store cache.Cache, limiter *worker.Limiter) (*Extractor, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	return &Extractor{
		provider: provider,
		store:    store,
		limiter:  limiter,
		config:   config,
	}, nil
}

// IsEnabled reports whether an extraction provider is configured
func (e *Extractor) IsEnabled() bool {
	return e.provider != nil
}

// ProviderName returns the active provider's name, or "" when disabled
func (e *Extractor) ProviderName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.Name()
}

// ExtractRecord obtains the structured fields for one contract. The cached
// flag reports whether the result came from the cache rather than a fresh
// provider call.
func (e *Extractor) ExtractRecord(ctx context.Context, contractID, text string) (record model.RawRecord, cached bool, err error) {
	if e.provider == nil {
		return model.RawRecord{}, false, fmt.Errorf("no LLM provider configured")
	}

	key := cache.Key(e.provider.Name(), e.config.Model, text)

	if e.store != nil {
		if data, found := e.store.Get(key); found {
			var cachedRecord model.RawRecord
			if err := json.Unmarshal(data, &cachedRecord); err == nil {
				// The same contract text may arrive under a new filename
				cachedRecord.Contract = contractID
				return cachedRecord, true, nil
			}
			// Corrupt entry: drop it and fall through to a fresh call
			_ = e.store.Delete(key)
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, e.provider.Name()); err != nil {
			return model.RawRecord{}, false, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := e.provider.Extract(ctx, ExtractRequest{
		ContractID: contractID,
		Text:       text,
		Model:      e.config.Model,
		MaxTokens:  e.config.MaxTokens,
	})
	if err != nil {
		return model.RawRecord{}, false, err
	}

	if e.store != nil {
		if data, err := json.Marshal(resp.Record); err == nil {
			_ = e.store.Set(key, data, 0) // Default TTL
		}
	}

	return resp.Record, false, nil
}
