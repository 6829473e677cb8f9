// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"
)

// Candidate is one evaluated person. TotalScore is derived from the three
// sub-scores and is only ever written by the scoring package.
type Candidate struct {
	ID                    int       `json:"id"`
	Name                  string    `json:"name"`
	YearsExperience       int       `json:"years_experience"`
	Skills                []string  `json:"skills"`
	CrisisManagementScore float64   `json:"crisis_management_score"`
	SustainabilityScore   float64   `json:"sustainability_score"`
	TeamMotivationScore   float64   `json:"team_motivation_score"`
	TotalScore            float64   `json:"total_score"`
	CreatedAt             time.Time `json:"created_at,omitzero"`
}

// Clone returns a deep copy; Skills is the only reference field.
func (c Candidate) Clone() Candidate {
	c.Skills = slices.Clone(c.Skills)
	return c
}

// HasSkill reports whether the candidate carries tag.
func (c Candidate) HasSkill(tag string) bool {
	return slices.Contains(c.Skills, tag)
}

// HasAnySkill reports whether the candidate carries at least one of tags.
func (c Candidate) HasAnySkill(tags []string) bool {
	for _, t := range tags {
		if c.HasSkill(t) {
			return true
		}
	}
	return false
}

// RankedCandidate is a Candidate annotated with its 1-based leaderboard position.
type RankedCandidate struct {
	Candidate
	Rank int `json:"rank"`
}

// SkillAggregate holds per-skill means over exactly the candidates carrying Skill.
type SkillAggregate struct {
	Skill             string  `json:"skill"`
	Count             int     `json:"count"`
	AvgCrisis         float64 `json:"avgCrisis"`
	AvgSustainability float64 `json:"avgSustainability"`
	AvgTeam           float64 `json:"avgTeam"`
	AvgTotal          float64 `json:"avgTotal"`
}

// Candidates strips rank annotations, preserving order.
func Candidates(ranked []RankedCandidate) []Candidate {
	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.Candidate
	}
	return out
}
