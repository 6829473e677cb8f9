// Package generator produces synthetic candidate records.
package generator

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/scoring"
)

// Generator is the upstream data source for fresh candidate lists.
type Generator interface {
	Generate(ctx context.Context, n int) ([]model.Candidate, error)
}

// Value ranges for generated records.
const (
	yearsMin  = 2
	yearsMax  = 20
	skillsMin = 5
	skillsMax = 8
	scoreMin  = 40.0
	scoreMax  = 100.0
)

// DefaultSkillPool is the tag vocabulary used unless WithSkillPool overrides it.
var DefaultSkillPool = []string{
	"Operations",
	"Lean Manufacturing",
	"Safety Compliance",
	"Sustainability",
	"Team Leadership",
	"Maintenance",
	"Logistics",
}

var (
	firstNames = []string{
		"Maria", "James", "Aisha", "Chen", "Lukas", "Priya", "Diego", "Fatima", "Noah", "Ingrid",
		"Kwame", "Sofia", "Mateo", "Hana", "Oliver", "Zainab", "Elena", "Tomasz", "Amara", "Liam",
	}
	lastNames = []string{
		"Garcia", "Okafor", "Nguyen", "Schmidt", "Patel", "Rossi", "Kowalski", "Haddad", "Johansson", "Mensah",
		"Tanaka", "Silva", "Murphy", "Novak", "Dubois", "Khan", "Larsen", "Moreno", "Ibrahim", "O'Brien",
	}
)

// RandomGenerator draws every field uniformly from fixed ranges.
// It is safe for concurrent use.
type RandomGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	seed      uint64
	skillPool []string
	now       func() time.Time
}

// New constructs a RandomGenerator.
func New(opts ...Option) *RandomGenerator {
	g := &RandomGenerator{
		skillPool: DefaultSkillPool,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seed == 0 {
		g.seed = randomSeed()
	}
	g.rng = rand.New(rand.NewPCG(g.seed, g.seed>>1|1))
	return g
}

// SkillPool returns the configured vocabulary.
func (g *RandomGenerator) SkillPool() []string {
	return append([]string(nil), g.skillPool...)
}

// Generate returns n candidates with ids 1..n and consistent totals.
func (g *RandomGenerator) Generate(ctx context.Context, n int) ([]model.Candidate, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	created := g.now().UTC().Truncate(time.Second)
	out := make([]model.Candidate, 0, n)
	for i := 1; i <= n; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("generation cancelled after %d candidates: %w", i-1, ctx.Err())
		default:
		}
		out = append(out, g.candidate(i, created))
	}
	return out, nil
}

// candidate must be called with mu held.
func (g *RandomGenerator) candidate(id int, created time.Time) model.Candidate {
	c := model.Candidate{
		ID:                    id,
		Name:                  firstNames[g.rng.IntN(len(firstNames))] + " " + lastNames[g.rng.IntN(len(lastNames))],
		YearsExperience:       yearsMin + g.rng.IntN(yearsMax-yearsMin+1),
		Skills:                g.skills(),
		CrisisManagementScore: g.score(),
		SustainabilityScore:   g.score(),
		TeamMotivationScore:   g.score(),
		CreatedAt:             created,
	}
	c.TotalScore = scoring.ComputeTotalScore(c)
	return c
}

// skills picks distinct tags; the count is capped by the pool size.
func (g *RandomGenerator) skills() []string {
	n := skillsMin + g.rng.IntN(skillsMax-skillsMin+1)
	n = min(n, len(g.skillPool))
	perm := g.rng.Perm(len(g.skillPool))
	out := make([]string, n)
	for i := range n {
		out[i] = g.skillPool[perm[i]]
	}
	return out
}

func (g *RandomGenerator) score() float64 {
	v := scoreMin + g.rng.Float64()*(scoreMax-scoreMin)
	return math.Min(scoring.Round1(v), scoreMax)
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:]) | 1
}

func dedupeTags(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	out := make([]string, 0, len(pool))
	for _, tag := range pool {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
