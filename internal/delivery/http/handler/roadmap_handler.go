package handler

import (
	"errors"
	"fmt"

	"learning-buddy/internal/delivery/http/dto"
	"learning-buddy/internal/delivery/http/middleware"
	"learning-buddy/internal/pkg/response"
	"learning-buddy/internal/pkg/validation"
	"learning-buddy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const (
	messageRoadmapUnavailable = "Roadmap feature tidak tersedia saat ini."
	messageRoadmapNotFound    = "Email '%s' tidak ditemukan dalam dataset roadmap"
)

type RoadmapHandler struct {
	nextSkills usecase.NextSkillUsecase
	roadmaps   usecase.RoadmapUsecase
	auth       fiber.Handler
}

// NewRoadmapHandler wires the next-skill and progress-roadmap usecases. auth
// guards GET /roadmap/me; a nil auth leaves that route unregistered.
func NewRoadmapHandler(nextSkills usecase.NextSkillUsecase, roadmaps usecase.RoadmapUsecase, auth fiber.Handler) *RoadmapHandler {
	return &RoadmapHandler{nextSkills: nextSkills, roadmaps: roadmaps, auth: auth}
}

func (h *RoadmapHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/roadmap")
	grp.Post("/next-skills", h.NextSkills)
	grp.Post("/by-email", h.ByEmail)
	grp.Get("/all", h.All)
	if h.auth != nil {
		grp.Get("/me", h.auth, h.Me)
	}
}

func (h *RoadmapHandler) NextSkills(c fiber.Ctx) error {
	var req dto.NextSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Error(), verr.Fields, verr)
	}

	res, err := h.nextSkills.PredictNextSkills(c.Context(), usecase.NextSkillParams{
		Query: req.Query,
		TopN:  req.TopN,
	})
	if err != nil {
		return mapRoadmapUsecaseError(err, "")
	}

	out := dto.NewNextSkillResponse(res)
	return response.Success(c, fiber.StatusOK, out.Message, out)
}

func (h *RoadmapHandler) Me(c fiber.Ctx) error {
	email, ok := middleware.EmailFromContext(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	view, err := h.roadmaps.RoadmapByEmail(c.Context(), email)
	if err != nil {
		return mapRoadmapUsecaseError(err, email)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *RoadmapHandler) ByEmail(c fiber.Ctx) error {
	var req dto.RoadmapByEmailRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Error(), verr.Fields, verr)
	}

	view, err := h.roadmaps.RoadmapByEmail(c.Context(), req.Email)
	if err != nil {
		return mapRoadmapUsecaseError(err, req.Email)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *RoadmapHandler) All(c fiber.Ctx) error {
	views, err := h.roadmaps.AllRoadmaps(c.Context())
	if err != nil {
		return mapRoadmapUsecaseError(err, "")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAllRoadmapsResponse(views))
}

func mapRoadmapUsecaseError(err error, email string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrRoadmapUserNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, fmt.Sprintf(messageRoadmapNotFound, email), nil, err)
	case errors.Is(err, usecase.ErrUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, messageRoadmapUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
