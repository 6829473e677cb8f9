// Package skills computes per-skill score aggregates.
package skills

import (
	"cmp"
	"slices"

	"github.com/okian/candidateboard/internal/domain/model"
)

type sums struct {
	crisis         float64
	sustainability float64
	team           float64
	total          float64
	count          int
}

// Aggregate groups candidates by skill tag and averages each score
// dimension over the candidates carrying that tag. A candidate contributes
// once to every distinct tag it carries. Output is ordered by AvgTotal
// descending; equal averages keep the order in which their tag was first
// seen in the input.
func Aggregate(list []model.Candidate) []model.SkillAggregate {
	order := make([]string, 0)
	bySkill := make(map[string]*sums)

	for _, c := range list {
		seen := make(map[string]struct{}, len(c.Skills))
		for _, tag := range c.Skills {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}

			s, ok := bySkill[tag]
			if !ok {
				s = &sums{}
				bySkill[tag] = s
				order = append(order, tag)
			}
			s.crisis += c.CrisisManagementScore
			s.sustainability += c.SustainabilityScore
			s.team += c.TeamMotivationScore
			s.total += c.TotalScore
			s.count++
		}
	}

	out := make([]model.SkillAggregate, 0, len(order))
	for _, tag := range order {
		s := bySkill[tag]
		n := float64(s.count)
		out = append(out, model.SkillAggregate{
			Skill:             tag,
			Count:             s.count,
			AvgCrisis:         s.crisis / n,
			AvgSustainability: s.sustainability / n,
			AvgTeam:           s.team / n,
			AvgTotal:          s.total / n,
		})
	}

	slices.SortStableFunc(out, func(a, b model.SkillAggregate) int {
		return cmp.Compare(b.AvgTotal, a.AvgTotal)
	})
	return out
}

// FromRanked aggregates a ranked list; ranks play no part in the result.
func FromRanked(ranked []model.RankedCandidate) []model.SkillAggregate {
	return Aggregate(model.Candidates(ranked))
}

// AllSkills returns the distinct tags present in list, sorted.
func AllSkills(list []model.Candidate) []string {
	set := make(map[string]struct{})
	for _, c := range list {
		for _, tag := range c.Skills {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}
