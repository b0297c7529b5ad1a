package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diabetes-triage/backend/internal/triage"
)

type HealthHandler struct {
	svc *triage.Service
}

func NewHealthHandler(svc *triage.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HandleHealth reports process liveness and whether a real model artifact is
// loaded. It always answers 200; a degraded model shows up in the body, not
// the status code.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "ok",
		"model_loaded":  h.svc.ModelLoaded(),
		"model_version": h.svc.ModelVersion(),
	})
}
