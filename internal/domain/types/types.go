// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/scoring"
)

// Card is a ranked candidate with its tier, as shown on a detail view.
type Card struct {
	model.RankedCandidate
	Tier      scoring.Tier `json:"tier"`
	TierLabel string       `json:"tier_label"`
}

// NewCard annotates r with the tier of its total score.
func NewCard(r model.RankedCandidate) Card {
	tier := scoring.TierFor(r.TotalScore)
	return Card{RankedCandidate: r, Tier: tier, TierLabel: tier.Label()}
}

// Generation summarizes one regeneration run.
type Generation struct {
	BatchID     string    `json:"batch_id"`
	Count       int       `json:"count"`
	Persisted   bool      `json:"persisted"`
	Storage     string    `json:"storage"`
	GeneratedAt time.Time `json:"generated_at"`
	// Leader is the rank 1 candidate after re-ranking, absent when the list is empty.
	Leader *model.RankedCandidate `json:"leader,omitempty"`
	Error  string                 `json:"error,omitempty"`
}
