package v1

import (
	"learning-buddy/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Roadmap *handler.RoadmapHandler
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	RegisterRoadmap(r, h.Roadmap)
}
