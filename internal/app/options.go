package service

import (
	"time"

	"github.com/okian/candidateboard/internal/adapters/cache"
	"github.com/okian/candidateboard/internal/adapters/repository"
	"github.com/okian/candidateboard/internal/generator"
	"github.com/okian/candidateboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage sets where the candidate list is persisted.
func WithStorage(storage repository.Storage) Option {
	return func(s *Service) {
		if storage != nil {
			s.storage = storage
		}
	}
}

// WithCache shares a cache with other components.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithGenerator sets the data source used by Regenerate.
func WithGenerator(g generator.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithPageSize sets the default page size for queries.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithCandidateCount sets how many candidates Regenerate produces by default.
func WithCandidateCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.candidateCount = count
		}
	}
}

// WithClock sets the time source for export headers and generation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
