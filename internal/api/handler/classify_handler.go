package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/core/classify"
)

// ClassifyHandler exposes the pure classification engine to the dashboard, so
// the UI can badge tracking numbers before any upstream call is made.
type ClassifyHandler struct{}

func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

// Classify handles GET /v1/classify?number=<identifier>. An identifier that
// matches no kind pattern is a 422, never silently defaulted.
func (h *ClassifyHandler) Classify(c echo.Context) error {
	number := c.QueryParam("number")
	if number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "number is required")
	}

	result, err := classify.Classify(number)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, classifyResponse{
		TrackingNumber: number,
		Kind:           string(result.Kind),
		Carrier:        result.Carrier,
	})
}
