package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes with the service identity, so a
// probe hitting the wrong port is visible in the response.
type HealthHandler struct {
	service string
}

// NewHealthHandler creates a health handler for the named service.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service}
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
	})
}
