// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/candidateboard/internal/adapters/cache"
	"github.com/okian/candidateboard/internal/adapters/export"
	"github.com/okian/candidateboard/internal/adapters/repository"
	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/query"
	"github.com/okian/candidateboard/internal/domain/ranking"
	"github.com/okian/candidateboard/internal/domain/skills"
	"github.com/okian/candidateboard/internal/domain/types"
	"github.com/okian/candidateboard/internal/generator"
	"github.com/okian/candidateboard/pkg/logger"
	"github.com/okian/candidateboard/pkg/metrics"
)

const defaultCandidateCount = 40

// Service composes the candidate store, the cache and the generator.
type Service struct {
	// mu serializes writers; reads go through the cache.
	mu sync.Mutex

	// Core components
	store     *repository.CandidateStore
	storage   repository.Storage
	cache     *cache.Cache
	generator generator.Generator

	// Configuration
	pageSize       int
	candidateCount int
	now            func() time.Time

	// State
	started        bool
	lastGeneration *types.Generation

	logger logger.Logger
}

// New constructs a Service. Without options it keeps candidates in memory
// and generates them with a randomly seeded generator.
func New(opts ...Option) *Service {
	s := &Service{
		pageSize:       query.DefaultPageSize,
		candidateCount: defaultCandidateCount,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithLogger(s.logger))
	}
	if s.storage == nil {
		s.storage = repository.NewMemoryStorage()
	}
	if s.generator == nil {
		s.generator = generator.New()
	}
	s.store = repository.NewCandidateStore(
		repository.WithStorage(s.storage),
		repository.WithCache(s.cache),
		repository.WithLogger(s.logger),
	)
	return s
}

// Start warms the cache so the first request does not pay for loading and ranking.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting candidate board service...",
		logger.String("storage", s.storage.Name()),
	)
	ranked := s.Ranked(ctx)
	s.started = true
	s.logger.Info(ctx, "candidate board service started",
		logger.Int("candidates", len(ranked)),
		logger.Int("pageSize", s.pageSize),
	)
	return nil
}

// Stop releases the storage backend.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping candidate board service...")
	if closer, ok := s.storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close storage", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "candidate board service stopped")
}

// Load returns the canonical candidate list.
func (s *Service) Load(ctx context.Context) []model.Candidate {
	return s.store.Load(ctx)
}

// Rank ranks list through the cache. A warm rankings slot is returned as-is
// even if list differs from the list it was computed from; writers clear
// the cache, so callers passing the current list always get a fresh view.
func (s *Service) Rank(list []model.Candidate) []model.RankedCandidate {
	return s.rankWith(func() ([]model.Candidate, error) { return list, nil })
}

// Ranked loads and ranks the canonical list. The list is read inside the
// cache producer so an invalidation racing with it cannot leave a ranking
// of the previous list behind.
func (s *Service) Ranked(ctx context.Context) []model.RankedCandidate {
	return s.rankWith(func() ([]model.Candidate, error) { return s.store.TryLoad(ctx) })
}

// rankWith caches the ranking unless source reports that its list was an
// uncached fallback, in which case the ranking is returned without storing it.
func (s *Service) rankWith(source func() ([]model.Candidate, error)) []model.RankedCandidate {
	var uncached []model.RankedCandidate
	ranked, err := s.cache.Rankings(func() ([]model.RankedCandidate, error) {
		list, err := source()
		start := time.Now()
		r := ranking.Rank(list)
		metrics.RecordRankingDuration(float64(time.Since(start).Microseconds()) / 1000)
		if err != nil {
			uncached = r
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return uncached
	}
	return ranked
}

// Aggregate computes per-skill means through the cache, with the same
// warm-slot behavior as Rank.
func (s *Service) Aggregate(list []model.Candidate) []model.SkillAggregate {
	return s.aggregateWith(func() ([]model.Candidate, error) { return list, nil })
}

func (s *Service) aggregateWith(source func() ([]model.Candidate, error)) []model.SkillAggregate {
	var uncached []model.SkillAggregate
	aggs, err := s.cache.SkillAggregates(func() ([]model.SkillAggregate, error) {
		list, err := source()
		start := time.Now()
		a := skills.Aggregate(list)
		metrics.RecordAggregationDuration(float64(time.Since(start).Microseconds()) / 1000)
		if err != nil {
			uncached = a
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		return uncached
	}
	return aggs
}

// Query loads, ranks and pages the canonical list. A non-positive page size
// uses the configured default.
func (s *Service) Query(ctx context.Context, p query.Params) query.Page {
	if p.PageSize <= 0 {
		p.PageSize = s.pageSize
	}
	page := query.Run(s.Ranked(ctx), p)
	metrics.RecordQuery(page.FilteredCount)
	return page
}

// Candidate returns the ranked detail card for id.
func (s *Service) Candidate(ctx context.Context, id int) (types.Card, error) {
	r, ok := ranking.Find(s.Ranked(ctx), id)
	if !ok {
		return types.Card{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return types.NewCard(r), nil
}

// Skills returns per-skill aggregates over the canonical list.
func (s *Service) Skills(ctx context.Context) []model.SkillAggregate {
	return s.aggregateWith(func() ([]model.Candidate, error) { return s.store.TryLoad(ctx) })
}

// SkillNames returns the sorted distinct tags in the canonical list.
func (s *Service) SkillNames(ctx context.Context) []string {
	return skills.AllSkills(s.Load(ctx))
}

// Save persists list and clears every cached value. A write failure wraps
// repository.ErrPersist; the list stays visible to later reads either way.
func (s *Service) Save(ctx context.Context, list []model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(ctx, list)
}

// Regenerate replaces the canonical list with n freshly generated
// candidates, or the configured count when n is not positive. A failed
// write is reported in the summary and as an error wrapping
// repository.ErrPersist; the new list is still served.
func (s *Service) Regenerate(ctx context.Context, n int) (types.Generation, error) {
	if n <= 0 {
		n = s.candidateCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.generator.Generate(ctx, n)
	if err != nil {
		return types.Generation{}, fmt.Errorf("generate candidates: %w", err)
	}

	gen := types.Generation{
		BatchID:     uuid.NewString(),
		Count:       len(list),
		Storage:     s.storage.Name(),
		GeneratedAt: s.now().UTC(),
	}

	saveErr := s.store.Save(ctx, list)
	gen.Persisted = saveErr == nil
	if saveErr != nil {
		gen.Error = saveErr.Error()
	}

	// The leader comes from the generated list, never from a fallback read.
	ranked := s.Rank(list)
	if len(ranked) > 0 {
		leader := ranked[0]
		gen.Leader = &leader
	}

	metrics.RecordRegeneration()
	s.lastGeneration = &gen
	s.logger.Info(ctx, "candidates regenerated",
		logger.String("batch", gen.BatchID),
		logger.Int("count", gen.Count),
		logger.Bool("persisted", gen.Persisted),
	)

	if saveErr != nil {
		return gen, saveErr
	}
	return gen, nil
}

// Export renders the canonical list in format f.
func (s *Service) Export(ctx context.Context, f export.Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case export.FormatJSON:
		data, err = export.JSON(s.Load(ctx))
	case export.FormatSQL:
		data = []byte(export.SQL(s.Load(ctx), s.now()))
	case export.FormatXLSX:
		var buf bytes.Buffer
		err = export.XLSX(s.Ranked(ctx), &buf)
		data = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", f, err)
	}
	metrics.RecordExport(string(f))
	return data, nil
}

// IsPersistError reports whether err is a non-fatal write failure.
func IsPersistError(err error) bool {
	return errors.Is(err, repository.ErrPersist)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	last := s.lastGeneration
	s.mu.Unlock()

	ctx := context.Background()
	list := s.Load(ctx)

	stats := map[string]interface{}{
		"started":         started,
		"storage":         s.storage.Name(),
		"pageSize":        s.pageSize,
		"candidateCount":  s.candidateCount,
		"totalCandidates": len(list),
		"cache":           s.cache.Stats(),
	}
	if last != nil {
		stats["lastGeneration"] = *last
	}

	metrics.UpdateCandidatesTotal(len(list))
	return stats
}
