package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ServiceConfig configures the reply cache.
type ServiceConfig struct {
	// Capacity bounds the number of stored replies.
	Capacity int
	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL time.Duration
	// SweepInterval is how often expired replies are dropped.
	SweepInterval time.Duration
	// Now is the clock for expiry; time.Now when nil.
	Now func() time.Time
}

// DefaultServiceConfig keeps 1000 replies for 10 minutes, swept every minute.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Capacity:      1000,
		DefaultTTL:    10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Service is the in-process reply cache: an LRU plus a background sweeper.
type Service struct {
	lru *LRUCache

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewService starts a cache and its sweeper. Zero fields of cfg take the
// defaults. Call Close to stop the sweeper.
func NewService(cfg ServiceConfig) *Service {
	def := DefaultServiceConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}

	lru := NewLRUCache(cfg.Capacity, cfg.DefaultTTL)
	if cfg.Now != nil {
		lru.now = cfg.Now
	}
	s := &Service{
		lru:  lru,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.sweepLoop(cfg.SweepInterval)
	return s
}

// Close stops the sweeper. It is safe to call more than once.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Get returns a copy of the reply stored under key.
func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.lru.Get(key)
}

// Set stores reply under key for ttl.
func (s *Service) Set(_ context.Context, key string, reply []byte, ttl time.Duration) error {
	s.lru.Set(key, reply, ttl)
	return nil
}

// Invalidate drops key, or every key with the given prefix when pattern
// ends in "*".
func (s *Service) Invalidate(_ context.Context, pattern string) error {
	if n := s.lru.Invalidate(pattern); n > 0 {
		slog.Debug("cache invalidated", slog.String("pattern", pattern), slog.Int("removed", n))
	}
	return nil
}

// Sweep drops expired replies now and returns how many were dropped.
func (s *Service) Sweep() int {
	return s.lru.CleanupExpired()
}

// Stats returns size and hit counters.
func (s *Service) Stats() Stats {
	return s.lru.Stats()
}

func (s *Service) sweepLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired cache entries dropped", slog.Int("removed", n))
			}
		}
	}
}

var _ CacheService = (*Service)(nil)
