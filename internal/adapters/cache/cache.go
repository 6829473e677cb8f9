// Package cache memoizes the candidate list and the values derived from it.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/pkg/logger"
	"github.com/okian/candidateboard/pkg/metrics"
)

// Slot identifies one memoized value.
type Slot int

// Cache slots.
const (
	SlotCandidates Slot = iota
	SlotRankings
	SlotSkills
)

var slots = [...]Slot{SlotCandidates, SlotRankings, SlotSkills}

func (s Slot) String() string {
	switch s {
	case SlotCandidates:
		return "candidates"
	case SlotRankings:
		return "rankings"
	case SlotSkills:
		return "skills"
	default:
		return "unknown"
	}
}

// SlotStats reports usage of one slot.
type SlotStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Populated bool  `json:"populated"`
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Slots         map[string]SlotStats `json:"slots"`
	Invalidations int64                `json:"invalidations"`
}

type slot[T any] struct {
	value  T
	ok     bool
	hits   atomic.Int64
	misses atomic.Int64
}

// Cache holds three independently invalidatable slots. Entries never expire
// on their own; only Invalidate and InvalidateAll clear them. Returned
// values are shared and must be treated as read-only.
type Cache struct {
	mu sync.Mutex
	// gen advances on every invalidation so a producer that finishes after
	// one cannot store a value computed from older data.
	gen uint64

	candidates slot[[]model.Candidate]
	rankings   slot[[]model.RankedCandidate]
	skills     slot[[]model.SkillAggregate]

	invalidations atomic.Int64
	logger        logger.Logger
}

// New constructs an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candidates returns the memoized candidate list, running produce on a miss.
func (c *Cache) Candidates(produce func() ([]model.Candidate, error)) ([]model.Candidate, error) {
	return getOrProduce(c, &c.candidates, SlotCandidates, produce)
}

// Rankings returns the memoized ranking, running produce on a miss.
func (c *Cache) Rankings(produce func() ([]model.RankedCandidate, error)) ([]model.RankedCandidate, error) {
	return getOrProduce(c, &c.rankings, SlotRankings, produce)
}

// SkillAggregates returns the memoized aggregates, running produce on a miss.
func (c *Cache) SkillAggregates(produce func() ([]model.SkillAggregate, error)) ([]model.SkillAggregate, error) {
	return getOrProduce(c, &c.skills, SlotSkills, produce)
}

// SetCandidates stores list in the candidates slot without touching the others.
func (c *Cache) SetCandidates(list []model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates.value = list
	c.candidates.ok = true
}

// Invalidate clears one slot.
func (c *Cache) Invalidate(s Slot) {
	c.mu.Lock()
	c.gen++
	c.clear(s)
	c.mu.Unlock()

	c.invalidations.Add(1)
	metrics.RecordCacheInvalidation()
	c.debug("cache slot invalidated", logger.String("slot", s.String()))
}

// InvalidateAll clears every slot in one critical section.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.gen++
	for _, s := range slots {
		c.clear(s)
	}
	c.mu.Unlock()

	c.invalidations.Add(1)
	metrics.RecordCacheInvalidation()
	c.debug("cache invalidated")
}

// Populated reports whether slot s currently holds a value.
func (c *Cache) Populated(s Slot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch s {
	case SlotCandidates:
		return c.candidates.ok
	case SlotRankings:
		return c.rankings.ok
	case SlotSkills:
		return c.skills.ok
	default:
		return false
	}
}

// Stats returns a snapshot of hit and miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	populated := [...]bool{c.candidates.ok, c.rankings.ok, c.skills.ok}
	c.mu.Unlock()

	return Stats{
		Slots: map[string]SlotStats{
			SlotCandidates.String(): {Hits: c.candidates.hits.Load(), Misses: c.candidates.misses.Load(), Populated: populated[SlotCandidates]},
			SlotRankings.String():   {Hits: c.rankings.hits.Load(), Misses: c.rankings.misses.Load(), Populated: populated[SlotRankings]},
			SlotSkills.String():     {Hits: c.skills.hits.Load(), Misses: c.skills.misses.Load(), Populated: populated[SlotSkills]},
		},
		Invalidations: c.invalidations.Load(),
	}
}

// clear must be called with mu held.
func (c *Cache) clear(s Slot) {
	switch s {
	case SlotCandidates:
		c.candidates.value, c.candidates.ok = nil, false
	case SlotRankings:
		c.rankings.value, c.rankings.ok = nil, false
	case SlotSkills:
		c.skills.value, c.skills.ok = nil, false
	}
}

func (c *Cache) debug(msg string, fields ...logger.Field) {
	if c.logger != nil {
		c.logger.Debug(context.Background(), msg, fields...)
	}
}

// getOrProduce runs produce outside the lock so a producer may itself read
// other slots. Errors are returned and never cached.
func getOrProduce[T any](c *Cache, s *slot[T], id Slot, produce func() (T, error)) (T, error) {
	c.mu.Lock()
	if s.ok {
		v := s.value
		c.mu.Unlock()
		s.hits.Add(1)
		metrics.RecordCacheHit(id.String())
		return v, nil
	}
	gen := c.gen
	c.mu.Unlock()

	s.misses.Add(1)
	metrics.RecordCacheMiss(id.String())

	v, err := produce()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if c.gen == gen && !s.ok {
		s.value, s.ok = v, true
	}
	c.mu.Unlock()
	return v, nil
}
