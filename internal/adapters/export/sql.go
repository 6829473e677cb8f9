package export

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/okian/candidateboard/internal/domain/model"
)

// SQL renders seed statements for the candidates, evaluations and rankings
// schema. Only raw inputs are inserted: evaluations.total_score and
// rankings.rank_position are derived by database triggers.
func SQL(list []model.Candidate, now time.Time) string {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b model.Candidate) int { return cmp.Compare(a.ID, b.ID) })

	var b strings.Builder
	fmt.Fprintf(&b, "-- Auto-generated seed data for the candidate evaluation schema\n")
	fmt.Fprintf(&b, "-- Generated: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "-- Candidates: %d\n\n", len(sorted))

	b.WriteString("-- Clear existing data\n")
	b.WriteString("DELETE FROM rankings;\n")
	b.WriteString("DELETE FROM evaluations;\n")
	b.WriteString("DELETE FROM candidates;\n\n")

	b.WriteString("-- Insert candidates\n")
	for _, c := range sorted {
		fmt.Fprintf(&b, "INSERT INTO candidates (id, name, years_experience, skills, created_at) VALUES (%d, %s, %d, %s, %s);\n",
			c.ID,
			pq.QuoteLiteral(c.Name),
			c.YearsExperience,
			pq.QuoteLiteral(skillsJSON(c.Skills)),
			timestampLiteral(c.CreatedAt),
		)
	}

	b.WriteString("\n-- Insert evaluations (triggers compute total_score and rankings)\n")
	for _, c := range sorted {
		fmt.Fprintf(&b, "INSERT INTO evaluations (candidate_id, crisis_management_score, sustainability_score, team_motivation_score) VALUES (%d, %s, %s, %s);\n",
			c.ID,
			number(c.CrisisManagementScore),
			number(c.SustainabilityScore),
			number(c.TeamMotivationScore),
		)
	}

	b.WriteString("\n-- Verification query\n")
	b.WriteString("-- SELECT c.id, c.name, e.total_score, r.rank_position\n")
	b.WriteString("-- FROM candidates c\n")
	b.WriteString("-- JOIN evaluations e ON c.id = e.candidate_id\n")
	b.WriteString("-- JOIN rankings r ON c.id = r.candidate_id\n")
	b.WriteString("-- ORDER BY r.rank_position LIMIT 10;\n")
	return b.String()
}

func skillsJSON(skills []string) string {
	if skills == nil {
		skills = []string{}
	}
	// A []string always marshals.
	data, _ := json.Marshal(skills)
	return string(data)
}

func timestampLiteral(t time.Time) string {
	if t.IsZero() {
		return "NULL"
	}
	return pq.QuoteLiteral(t.UTC().Format(time.RFC3339))
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
