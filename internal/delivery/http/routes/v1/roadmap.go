package v1

import (
	"learning-buddy/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterRoadmap(r fiber.Router, roadmapHandler *handler.RoadmapHandler) {
	if r == nil {
		return
	}
	if roadmapHandler == nil {
		return
	}

	roadmapHandler.RegisterRoutes(r)
}
