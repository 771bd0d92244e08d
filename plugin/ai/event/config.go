package event

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/agenda/plugin/ai"
	"github.com/hrygo/agenda/plugin/ai/cache"
)

// NewFromConfig builds an Extractor backed by the configured LLM provider.
// c may be nil to disable reply caching; a zero ttl uses the cache default.
func NewFromConfig(cfg *ai.Config, c cache.CacheService, ttl time.Duration) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AI config")
	}
	llm, err := ai.NewLLMService(&cfg.LLM)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM service")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", cfg.Timezone)
	}

	opts := []Option{
		WithModel(cfg.LLM.Provider + "/" + cfg.LLM.Model),
		WithTimezone(cfg.Timezone, loc, cfg.TZOffset),
	}
	if c != nil {
		opts = append(opts, WithCache(c, ttl))
	}
	return NewExtractor(llm, opts...), nil
}
