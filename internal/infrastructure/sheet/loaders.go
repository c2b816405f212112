package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"learning-buddy/internal/domain/catalog"
	"learning-buddy/internal/domain/roadmap"
)

const (
	SheetUsers    = "User"
	SheetProgress = "User Progress"
	SheetModules  = "Title"
)

// LoadCatalog reads skill rows from a catalog file and validates them. A
// missing column or an empty table is a configuration error.
func LoadCatalog(path, sheet string) ([]catalog.Skill, error) {
	t, err := ReadFile(path, sheet)
	if err != nil {
		return nil, &catalog.ConfigurationError{Reason: err.Error()}
	}
	return CatalogFromTable(t)
}

func CatalogFromTable(t *Table) ([]catalog.Skill, error) {
	if err := t.Require("skill", "skill_level", "learning_path_name"); err != nil {
		return nil, &catalog.ConfigurationError{Reason: err.Error()}
	}

	records := make([]catalog.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, catalog.Record{
			Skill:        t.Get(row, "skill"),
			SkillLevel:   t.Get(row, "skill_level"),
			LearningPath: t.Get(row, "learning_path_name"),
			Description:  t.Get(row, "description"),
			Prerequisite: t.Get(row, "prerequisite"),
		})
	}
	return catalog.FromRecords(records)
}

// LoadRoadmap reads the roster, module and prediction sheets of a workbook.
// Unreadable or malformed tables are reported as roadmap.ConfigurationError.
func LoadRoadmap(path string) (roadmap.Tables, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return roadmap.Tables{}, &roadmap.ConfigurationError{Reason: "open workbook", Err: err}
	}
	defer wb.Close()

	users, err := wb.Table(SheetUsers)
	if err != nil {
		return roadmap.Tables{}, &roadmap.ConfigurationError{Reason: "read roster", Err: err}
	}
	progress, err := wb.Table(SheetProgress)
	if err != nil {
		return roadmap.Tables{}, &roadmap.ConfigurationError{Reason: "read progress", Err: err}
	}
	// Module metadata is optional; rows without it fall back to defaults.
	modules, err := wb.Table(SheetModules)
	if err != nil {
		modules = NewTable(SheetModules, []string{"title_id", "title", "unlock_requirement"}, nil)
	}
	return RoadmapFromTables(users, modules, progress)
}

func RoadmapFromTables(users, modules, progress *Table) (roadmap.Tables, error) {
	var out roadmap.Tables

	if err := users.Require("user_id", "email"); err != nil {
		return out, &roadmap.ConfigurationError{Reason: "roster", Err: err}
	}
	for _, row := range users.Rows {
		out.Users = append(out.Users, roadmap.User{
			UserID:       NormalizeID(users.Get(row, "user_id")),
			Name:         users.Get(row, "name"),
			Email:        users.Get(row, "email"),
			Course:       users.Get(row, "course"),
			LearningPath: users.Get(row, "learning_path_name"),
		})
	}

	if err := modules.Require("title_id"); err != nil {
		return out, &roadmap.ConfigurationError{Reason: "module metadata", Err: err}
	}
	for i, row := range modules.Rows {
		id, err := parseInt(modules.Get(row, "title_id"))
		if err != nil {
			return out, rowError(modules, i, "title_id", err)
		}
		req := float64(roadmap.DefaultUnlockRequirement)
		if raw := modules.Get(row, "unlock_requirement"); raw != "" {
			if req, err = parseFloat(raw); err != nil {
				return out, rowError(modules, i, "unlock_requirement", err)
			}
		}
		out.Modules = append(out.Modules, roadmap.Module{
			TitleID:           id,
			Title:             modules.Get(row, "title"),
			UnlockRequirement: req,
		})
	}

	if err := progress.Require("user_id", "title_id"); err != nil {
		return out, &roadmap.ConfigurationError{Reason: "progress", Err: err}
	}
	for i, row := range progress.Rows {
		id, err := parseInt(progress.Get(row, "title_id"))
		if err != nil {
			return out, rowError(progress, i, "title_id", err)
		}
		var pct float64
		if raw := progress.First(row, "predicted_progress", "pred_progress", "progress_percentage"); raw != "" {
			if pct, err = parseFloat(raw); err != nil {
				return out, rowError(progress, i, "progress", err)
			}
		}
		status := progress.First(row, "predicted_status", "pred_status", "status")
		if status == "" {
			status = "Unknown"
		}
		out.Predictions = append(out.Predictions, roadmap.Prediction{
			UserID:   NormalizeID(progress.Get(row, "user_id")),
			TitleID:  id,
			Progress: pct,
			Status:   status,
		})
	}
	return out, nil
}

// rowError names the sheet row as a spreadsheet user sees it, header included.
func rowError(t *Table, i int, col string, err error) error {
	return &roadmap.ConfigurationError{Reason: fmt.Sprintf("%s row %d: %s", t.Name, i+2, col), Err: err}
}

// NormalizeID renders integral numeric ids without a fractional part, so a
// spreadsheet "7.0" and "7" name the same user.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// parseInt accepts spreadsheet numbers such as "3.0" but rejects fractions.
func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
}
