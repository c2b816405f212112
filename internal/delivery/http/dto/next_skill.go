package dto

import (
	"strings"

	"learning-buddy/internal/domain/nextskill"
)

const (
	MessageNextSkills   = "Rekomendasi skill berikutnya"
	MessageFallback     = "Belum ada skill yang terdeteksi, mulai dari skill dasar berikut"
	MessageNoNextSkills = "Tidak ada rekomendasi skill berikutnya. Coba query yang lebih spesifik seperti 'sehabis HTML, CSS apa lagi yang harus dipelajari?'"
)

type NextSkillRequest struct {
	Query string `json:"query" validate:"required"`
	TopN  int    `json:"top_n" validate:"omitempty,min=1,max=10"`
}

type NextSkillItem struct {
	Skill        string  `json:"skill"`
	SkillLevel   string  `json:"skill_level"`
	Prerequisite string  `json:"prerequisite"`
	Probability  float64 `json:"probability"`
}

type NextSkillResponse struct {
	Query           string          `json:"query"`
	LearningPath    string          `json:"learning_path"`
	DetectedSkills  []string        `json:"detected_skills"`
	Fallback        bool            `json:"fallback"`
	Recommendations []NextSkillItem `json:"recommendations"`
	Message         string          `json:"message"`
}

func NewNextSkillResponse(r nextskill.Result) NextSkillResponse {
	items := make([]NextSkillItem, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		items = append(items, NextSkillItem{
			Skill:        rec.Skill,
			SkillLevel:   rec.SkillLevel,
			Prerequisite: rec.Prerequisite,
			Probability:  rec.Probability,
		})
	}

	detected := r.DetectedSkills
	if detected == nil {
		detected = []string{}
	}

	msg := MessageNextSkills
	switch {
	case len(items) == 0:
		msg = MessageNoNextSkills
	case r.Outcome == nextskill.OutcomeFallback:
		msg = MessageFallback
	}

	return NextSkillResponse{
		Query:           strings.TrimSpace(r.Query),
		LearningPath:    r.LearningPath,
		DetectedSkills:  detected,
		Fallback:        r.Outcome == nextskill.OutcomeFallback,
		Recommendations: items,
		Message:         msg,
	}
}
