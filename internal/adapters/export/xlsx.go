package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/scoring"
	"github.com/okian/candidateboard/internal/domain/skills"
)

// Sheet names in the workbook written by XLSX.
const (
	SheetRanked = "Ranked Candidates"
	SheetSkills = "Skills"
)

var (
	rankedHeaders = []string{"Rank", "Candidate", "Experience (yrs)", "Skills", "Crisis", "Sustainability", "Team", "Total", "Tier"}
	skillHeaders  = []string{"Skill", "Candidates", "Avg Crisis", "Avg Sustainability", "Avg Team", "Avg Total"}

	tierFill = map[scoring.Tier]string{
		scoring.TierExcellent:        "C6EFCE",
		scoring.TierGood:             "FFEB9C",
		scoring.TierNeedsImprovement: "FFC7CE",
	}
)

// XLSX writes a workbook with the ranked list, coloured by tier, and the
// per-skill aggregates.
func XLSX(ranked []model.RankedCandidate, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRanked); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSkills); err != nil {
		return fmt.Errorf("create skills sheet: %w", err)
	}

	if err := rankedSheet(f, ranked); err != nil {
		return fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}
	if err := skillsSheet(f, skills.FromRanked(ranked)); err != nil {
		return fmt.Errorf("failed to create skills sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border(),
	})
	if err != nil {
		return err
	}

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func rankedSheet(f *excelize.File, ranked []model.RankedCandidate) error {
	if err := writeHeader(f, SheetRanked, rankedHeaders); err != nil {
		return err
	}

	styles := make(map[scoring.Tier]int, len(tierFill))
	for tier, color := range tierFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border(),
		})
		if err != nil {
			return err
		}
		styles[tier] = id
	}

	for i, r := range ranked {
		tier := scoring.TierFor(r.TotalScore)
		row := []any{
			r.Rank,
			r.Name,
			r.YearsExperience,
			strings.Join(r.Skills, ", "),
			r.CrisisManagementScore,
			r.SustainabilityScore,
			r.TeamMotivationScore,
			r.TotalScore,
			tier.Label(),
		}
		first, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(row), i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetRanked, first, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetRanked, first, last, styles[tier]); err != nil {
			return err
		}
	}

	widths := []float64{8, 25, 16, 60, 12, 16, 12, 12, 20}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetRanked, col, col, width); err != nil {
			return err
		}
	}

	if len(ranked) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rankedHeaders), len(ranked)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(SheetRanked, "A1:"+last, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func skillsSheet(f *excelize.File, aggs []model.SkillAggregate) error {
	if err := writeHeader(f, SheetSkills, skillHeaders); err != nil {
		return err
	}
	for i, a := range aggs {
		row := []any{
			a.Skill,
			a.Count,
			scoring.Round1(a.AvgCrisis),
			scoring.Round1(a.AvgSustainability),
			scoring.Round1(a.AvgTeam),
			scoring.Round1(a.AvgTotal),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSkills, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSkills, "A", "A", 24)
}
