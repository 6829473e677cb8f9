// Package scoring derives a candidate's total score from its sub-scores.
//
// Every total in the system goes through ComputeTotalScore, so a single
// rounding convention (one decimal) applies to generated, loaded and
// repaired records alike.
package scoring

import (
	"math"

	"github.com/okian/candidateboard/internal/domain/model"
)

// Score bounds for a single sub-score.
const (
	MinScore = 0
	MaxScore = 100
)

// Tier thresholds on the total score.
const (
	excellentThreshold = 85
	goodThreshold      = 70
)

// Tier buckets a total score for presentation.
type Tier string

// Known tiers.
const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierNeedsImprovement Tier = "needs_improvement"
)

// Label returns the human readable tier name.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierGood:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// TierFor buckets a total score: >=85 excellent, >=70 good, else needs improvement.
func TierFor(total float64) Tier {
	switch {
	case total >= excellentThreshold:
		return TierExcellent
	case total >= goodThreshold:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// sanitize maps a raw sub-score into [MinScore, MaxScore]. NaN is treated as
// a missing value.
func sanitize(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(MinScore, math.Min(MaxScore, x))
}

// ComputeTotalScore returns the mean of the three sub-scores rounded to one
// decimal. Missing sub-scores count as 0; it never fails.
func ComputeTotalScore(c model.Candidate) float64 {
	sum := sanitize(c.CrisisManagementScore) +
		sanitize(c.SustainabilityScore) +
		sanitize(c.TeamMotivationScore)
	return Round1(sum / 3)
}

// Repair returns a copy of c with sanitized sub-scores and a recomputed
// total. A stored total is never trusted.
func Repair(c model.Candidate) model.Candidate {
	out := c.Clone()
	out.CrisisManagementScore = sanitize(c.CrisisManagementScore)
	out.SustainabilityScore = sanitize(c.SustainabilityScore)
	out.TeamMotivationScore = sanitize(c.TeamMotivationScore)
	out.TotalScore = ComputeTotalScore(out)
	return out
}

// RepairAll applies Repair to every record, returning a new slice.
func RepairAll(list []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(list))
	for i, c := range list {
		out[i] = Repair(c)
	}
	return out
}

// IsConsistent reports whether c's stored total matches its sub-scores.
func IsConsistent(c model.Candidate) bool {
	return c.TotalScore == ComputeTotalScore(c)
}
