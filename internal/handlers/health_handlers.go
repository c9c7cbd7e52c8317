package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	version string
}

func NewHealthHandlers(version string) *HealthHandlers {
	return &HealthHandlers{version: version}
}

func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
