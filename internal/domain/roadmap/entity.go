// Package roadmap joins per-module progress predictions with module metadata
// into a learner-facing roadmap view.
package roadmap

import "errors"

var ErrConfiguration = errors.New("roadmap configuration error")

// ConfigurationError reports roster, module or progress tables that cannot be
// loaded. Err keeps the underlying cause for errors.Is.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return "roadmap configuration error: " + e.Reason + ": " + e.Err.Error()
	}
	return "roadmap configuration error: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"

	// DefaultUnlockRequirement applies to modules with no metadata row.
	DefaultUnlockRequirement = 80

	AccessUnlocked = "🔓 (Unlocked)"

	MessageKeepLearning = "💪 Terus belajar untuk unlock modul berikutnya!"
	MessageNoProgress   = "Belum ada progress tercatat"
)

// Module is one entry of the course roadmap.
type Module struct {
	TitleID           int
	Title             string
	UnlockRequirement float64
}

// User is a row of the learner roster.
type User struct {
	UserID       string
	Name         string
	Email        string
	Course       string
	LearningPath string
}

// Prediction is a pre-scored progress row for one user and one module.
type Prediction struct {
	UserID   string
	TitleID  int
	Progress float64
	Status   string
}

// Tables is the already-loaded input of a Compositor.
type Tables struct {
	Users       []User
	Modules     []Module
	Predictions []Prediction
}

type Item struct {
	TitleID           int     `json:"title_id"`
	Title             string  `json:"title"`
	Status            string  `json:"status"`
	Progress          float64 `json:"progress"`
	UnlockRequirement int     `json:"unlock_requirement"`
	AccessStatus      string  `json:"access_status"`
	Display           string  `json:"display"`
	Unlocked          bool    `json:"-"`
}

// Unlock names an in-progress module that cleared its threshold and the module
// it opens.
type Unlock struct {
	Current Item
	Next    Item
}

type View struct {
	UserID            string  `json:"-"`
	UserName          string  `json:"user_name"`
	Email             string  `json:"email"`
	CurrentCourse     string  `json:"current_course"`
	LearningPath      string  `json:"learning_path"`
	Roadmap           []Item  `json:"roadmap"`
	NextModuleMessage string  `json:"next_module_message"`
	TotalModules      int     `json:"total_modules"`
	CompletedModules  int     `json:"completed_modules"`
	InProgressModules int     `json:"in_progress_modules"`
	Unlock            *Unlock `json:"-"`
}
