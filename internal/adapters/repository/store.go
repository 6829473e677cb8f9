package repository

import (
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/candidateboard/internal/adapters/cache"
	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/scoring"
	"github.com/okian/candidateboard/pkg/logger"
	"github.com/okian/candidateboard/pkg/metrics"
)

// Load sources reported in logs and metrics.
const (
	SourceStorage = "storage"
	SourceDefault = "default"
)

//go:embed data/candidates.json
var defaultDataset []byte

// DefaultCandidates decodes the bundled dataset.
func DefaultCandidates() ([]model.Candidate, error) {
	return Decode(defaultDataset)
}

// Decode parses a persisted document. Empty lists, records without an id or
// name, and duplicate ids are reported as ErrMalformed.
func Decode(data []byte) ([]model.Candidate, error) {
	var list []model.Candidate
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrMalformed)
	}
	seen := make(map[int]struct{}, len(list))
	for i, c := range list {
		if c.ID <= 0 || c.Name == "" {
			return nil, fmt.Errorf("%w: record %d lacks id or name", ErrMalformed, i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformed, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return list, nil
}

// Encode serializes list sorted by id as an indented JSON array. list is not modified.
func Encode(list []model.Candidate) ([]byte, error) {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b model.Candidate) int { return cmp.Compare(a.ID, b.ID) })
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}
	return data, nil
}

// CandidateStore owns the canonical candidate list. Reads go through the
// cache; writes go to Storage and clear the cache.
type CandidateStore struct {
	storage Storage
	cache   *cache.Cache
	logger  logger.Logger
}

// NewCandidateStore constructs a store. Without options it uses in-memory
// storage and a private cache.
func NewCandidateStore(opts ...Option) *CandidateStore {
	s := &CandidateStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	return s
}

// Storage returns the configured backend.
func (s *CandidateStore) Storage() Storage { return s.storage }

// Load returns the canonical list. A missing, empty or unparsable document
// falls back to the bundled dataset; every record is repaired before it is
// cached. Load never fails.
func (s *CandidateStore) Load(ctx context.Context) []model.Candidate {
	list, _ := s.TryLoad(ctx)
	return list
}

// TryLoad is Load that also reports when storage could not be consulted,
// because ctx ended or the backend failed. The bundled dataset is still
// returned in that case but it is not cached, and the error wraps
// ErrUnavailable so callers can skip caching anything derived from it.
func (s *CandidateStore) TryLoad(ctx context.Context) ([]model.Candidate, error) {
	var fallback []model.Candidate
	list, err := s.cache.Candidates(func() ([]model.Candidate, error) {
		l, rerr := s.read(ctx)
		if rerr != nil {
			fallback = l
			return nil, rerr
		}
		return l, nil
	})
	if err != nil {
		return fallback, err
	}
	return list, nil
}

// read returns the repaired list and, when the result must not be cached,
// an error wrapping ErrUnavailable.
func (s *CandidateStore) read(ctx context.Context) ([]model.Candidate, error) {
	data, err := s.storage.Read(ctx)
	if err == nil {
		var list []model.Candidate
		list, err = Decode(data)
		if err == nil {
			repaired := scoring.RepairAll(list)
			metrics.RecordStoreLoad(SourceStorage)
			metrics.UpdateCandidatesTotal(len(repaired))
			s.debug(ctx, "candidates loaded",
				logger.String("storage", s.storage.Name()),
				logger.Int("count", len(repaired)),
			)
			return repaired, nil
		}
	}

	// Absent and malformed documents are settled answers; anything else
	// (cancellation, a dead backend) says nothing about what is persisted.
	var unavailable error
	switch {
	case errors.Is(err, ErrNotFound):
		s.debug(ctx, "no persisted candidates, using default dataset",
			logger.String("storage", s.storage.Name()))
	case errors.Is(err, ErrMalformed):
		s.warn(ctx, "persisted candidates unusable, using default dataset",
			logger.String("storage", s.storage.Name()),
			logger.Error(err),
		)
	default:
		unavailable = fmt.Errorf("%w: %s: %w", ErrUnavailable, s.storage.Name(), err)
		if ctx.Err() != nil {
			s.debug(ctx, "candidate load abandoned, serving default dataset uncached", logger.Error(err))
		} else {
			s.warn(ctx, "candidate storage unavailable, serving default dataset uncached",
				logger.String("storage", s.storage.Name()),
				logger.Error(err),
			)
		}
	}

	metrics.RecordStoreFallback()
	list, derr := DefaultCandidates()
	if derr != nil {
		s.warn(ctx, "default dataset unusable", logger.Error(derr))
		return []model.Candidate{}, unavailable
	}
	repaired := scoring.RepairAll(list)
	metrics.RecordStoreLoad(SourceDefault)
	if unavailable == nil {
		metrics.UpdateCandidatesTotal(len(repaired))
	}
	return repaired, unavailable
}

// Save persists list ordered by id and clears the cache before returning,
// whether or not the write landed. Scores are stored as given. On failure
// the returned error wraps ErrPersist and list is primed into the cache so
// the session keeps working with it.
func (s *CandidateStore) Save(ctx context.Context, list []model.Candidate) error {
	data, err := Encode(list)
	if err == nil {
		err = s.storage.Write(ctx, data)
	}

	s.cache.InvalidateAll()

	if err != nil {
		metrics.RecordStoreSaveError()
		s.cache.SetCandidates(cloneAll(list))
		s.warn(ctx, "failed to persist candidates",
			logger.String("storage", s.storage.Name()),
			logger.Int("count", len(list)),
			logger.Error(err),
		)
		return fmt.Errorf("%w to %s: %w", ErrPersist, s.storage.Name(), err)
	}

	metrics.RecordStoreSave()
	metrics.UpdateCandidatesTotal(len(list))
	s.debug(ctx, "candidates saved",
		logger.String("storage", s.storage.Name()),
		logger.Int("count", len(list)),
	)
	return nil
}

func cloneAll(list []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

func (s *CandidateStore) debug(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Debug(ctx, msg, fields...)
	}
}

func (s *CandidateStore) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, fields...)
	}
}
