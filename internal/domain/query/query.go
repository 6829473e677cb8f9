// Package query filters, sorts and paginates a ranked candidate list.
package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/candidateboard/internal/domain/model"
)

// DefaultPageSize is used when Params.PageSize is not positive.
const DefaultPageSize = 10

// Sort keys accepted by Run.
const (
	SortRank            = "rank"
	SortName            = "name"
	SortYearsExperience = "years_experience"
	SortTotalScore      = "total_score"

	sortExperienceAlias = "experience"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Params describes one leaderboard view.
type Params struct {
	Search   string
	Skills   []string
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// Page is one slice of the filtered and sorted list.
type Page struct {
	Items         []model.RankedCandidate `json:"items"`
	FilteredCount int                     `json:"filteredCount"`
	TotalCount    int                     `json:"totalCount"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"pageSize"`
	TotalPages    int                     `json:"totalPages"`
}

// Normalize resolves defaults and aliases. Run calls it itself; it is
// exported so callers can echo the effective parameters.
func (p Params) Normalize() Params {
	p.Search = strings.TrimSpace(p.Search)
	p.SortBy = NormalizeSortKey(p.SortBy)
	if strings.EqualFold(p.Order, OrderDesc) {
		p.Order = OrderDesc
	} else {
		p.Order = OrderAsc
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// NormalizeSortKey maps key onto a supported sort key; unknown keys fall back to rank.
func NormalizeSortKey(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case SortName:
		return SortName
	case SortYearsExperience, sortExperienceAlias:
		return SortYearsExperience
	case SortTotalScore:
		return SortTotalScore
	default:
		return SortRank
	}
}

// Run applies the name filter, the skill filter, the sort and the page
// window in that order. ranked is not modified. A page past the end yields
// empty Items rather than an error.
func Run(ranked []model.RankedCandidate, p Params) Page {
	p = p.Normalize()

	filtered := make([]model.RankedCandidate, 0, len(ranked))
	needle := strings.ToLower(p.Search)
	for _, r := range ranked {
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		if len(p.Skills) > 0 && !r.HasAnySkill(p.Skills) {
			continue
		}
		filtered = append(filtered, r)
	}

	compare := comparator(p.SortBy)
	if p.Order == OrderDesc {
		asc := compare
		compare = func(a, b model.RankedCandidate) int { return asc(b, a) }
	}
	slices.SortStableFunc(filtered, compare)

	totalPages := (len(filtered) + p.PageSize - 1) / p.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	items := []model.RankedCandidate{}
	start := (p.Page - 1) * p.PageSize
	if start < len(filtered) {
		end := min(start+p.PageSize, len(filtered))
		items = make([]model.RankedCandidate, 0, end-start)
		for _, r := range filtered[start:end] {
			items = append(items, model.RankedCandidate{Candidate: r.Clone(), Rank: r.Rank})
		}
	}

	return Page{
		Items:         items,
		FilteredCount: len(filtered),
		TotalCount:    len(ranked),
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalPages:    totalPages,
	}
}

func comparator(key string) func(a, b model.RankedCandidate) int {
	switch key {
	case SortName:
		// Collator keeps scratch buffers, so one per call.
		col := collate.New(language.English, collate.IgnoreCase)
		return func(a, b model.RankedCandidate) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortYearsExperience:
		return func(a, b model.RankedCandidate) int {
			return cmp.Compare(a.YearsExperience, b.YearsExperience)
		}
	case SortTotalScore:
		return func(a, b model.RankedCandidate) int {
			return cmp.Compare(a.TotalScore, b.TotalScore)
		}
	default:
		return func(a, b model.RankedCandidate) int {
			return cmp.Compare(a.Rank, b.Rank)
		}
	}
}
