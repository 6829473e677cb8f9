// Package ranking assigns leaderboard positions to candidates.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/candidateboard/internal/domain/model"
)

// Rank returns a new slice ordered by TotalScore descending with dense,
// 1-based ranks. Equal totals keep their input order, so rank depends on
// the score alone. The input slice is not modified.
func Rank(list []model.Candidate) []model.RankedCandidate {
	ranked := make([]model.RankedCandidate, len(list))
	for i, c := range list {
		ranked[i] = model.RankedCandidate{Candidate: c.Clone()}
	}

	slices.SortStableFunc(ranked, func(a, b model.RankedCandidate) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top returns at most n leading entries of an already ranked list.
func Top(ranked []model.RankedCandidate, n int) []model.RankedCandidate {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return slices.Clone(ranked[:n])
}

// Find returns the ranked entry for id.
func Find(ranked []model.RankedCandidate, id int) (model.RankedCandidate, bool) {
	i := slices.IndexFunc(ranked, func(r model.RankedCandidate) bool { return r.ID == id })
	if i < 0 {
		return model.RankedCandidate{}, false
	}
	return ranked[i], true
}
