package generator

import "time"

// Option applies a configuration option to the RandomGenerator.
type Option func(*RandomGenerator)

// WithSeed makes output reproducible. Zero keeps a random seed.
func WithSeed(seed uint64) Option {
	return func(g *RandomGenerator) {
		if seed != 0 {
			g.seed = seed
		}
	}
}

// WithSkillPool replaces the tag vocabulary. Empty pools and blank or
// repeated tags are ignored.
func WithSkillPool(pool []string) Option {
	return func(g *RandomGenerator) {
		cleaned := dedupeTags(pool)
		if len(cleaned) > 0 {
			g.skillPool = cleaned
		}
	}
}

// WithClock sets the source of CreatedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *RandomGenerator) {
		if now != nil {
			g.now = now
		}
	}
}
