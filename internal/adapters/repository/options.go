package repository

import (
	"github.com/okian/candidateboard/internal/adapters/cache"
	"github.com/okian/candidateboard/pkg/logger"
)

// Option applies a configuration option to the CandidateStore.
type Option func(*CandidateStore)

// WithStorage sets the persistence backend.
func WithStorage(storage Storage) Option {
	return func(s *CandidateStore) {
		if storage != nil {
			s.storage = storage
		}
	}
}

// WithCache shares a cache with other components.
func WithCache(c *cache.Cache) Option {
	return func(s *CandidateStore) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a logger for load fallbacks and save failures.
func WithLogger(l logger.Logger) Option {
	return func(s *CandidateStore) {
		if l != nil {
			s.logger = l
		}
	}
}
