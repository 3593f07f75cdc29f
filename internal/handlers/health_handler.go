package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping func() error
}

// NewHealthHandler takes the database ping used to report store health.
func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
