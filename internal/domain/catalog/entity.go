package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConfiguration = errors.New("catalog configuration error")

// ConfigurationError reports catalog or module metadata that cannot be loaded.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return "catalog configuration error: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Level is the ordinal difficulty of a skill. LevelUnranked is only used as a
// sentinel in fallback paths and is never stored in a loaded catalog.
type Level int

const (
	LevelUnranked     Level = 0
	LevelBeginner     Level = 1
	LevelIntermediate Level = 2
	LevelAdvanced     Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	default:
		return ""
	}
}

func (l Level) Valid() bool {
	return l >= LevelBeginner && l <= LevelAdvanced
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "advanced":
		return LevelAdvanced, nil
	default:
		return LevelUnranked, configErrorf("unknown skill level %q", s)
	}
}

type Skill struct {
	ID           int
	Name         string
	Level        Level
	LearningPath string
	Description  string
	Prerequisite string
}

// Record is a raw catalog row as it comes out of a spreadsheet, CSV file or table.
type Record struct {
	Skill        string
	SkillLevel   string
	LearningPath string
	Description  string
	Prerequisite string
}

// FromRecords converts raw rows into skills. Rows are rejected, not defaulted,
// when the name, path or level is missing or unknown.
func FromRecords(records []Record) ([]Skill, error) {
	if len(records) == 0 {
		return nil, configErrorf("empty catalog")
	}

	out := make([]Skill, 0, len(records))
	for i, r := range records {
		name := strings.TrimSpace(r.Skill)
		if name == "" {
			return nil, configErrorf("row %d: empty skill name", i+1)
		}
		path := strings.TrimSpace(r.LearningPath)
		if path == "" {
			return nil, configErrorf("row %d (%s): empty learning path", i+1, name)
		}
		lvl, err := ParseLevel(r.SkillLevel)
		if err != nil {
			return nil, configErrorf("row %d (%s): unknown skill level %q", i+1, name, r.SkillLevel)
		}
		out = append(out, Skill{
			ID:           i,
			Name:         name,
			Level:        lvl,
			LearningPath: path,
			Description:  strings.TrimSpace(r.Description),
			Prerequisite: strings.TrimSpace(r.Prerequisite),
		})
	}
	return out, nil
}
