package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// CredentialWriter is the settings collaborator's write contract.
type CredentialWriter interface {
	Save(ctx context.Context, scopeID string, version domain.ProviderVersion, secret string) error
	Remove(ctx context.Context, scopeID string, version domain.ProviderVersion) error
}

// CredentialHandler is the backend of the dashboard's API-key settings screen.
// Routes are guarded by the bearer middleware; the secret never appears in
// responses or logs.
type CredentialHandler struct {
	settings CredentialWriter
}

func NewCredentialHandler(settings CredentialWriter) *CredentialHandler {
	return &CredentialHandler{settings: settings}
}

// Save handles PUT /v1/credentials/:scope — stores or rotates the key for a
// scope and provider version.
func (h *CredentialHandler) Save(c echo.Context) error {
	var req saveCredentialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	version, err := domain.ParseVersion(req.Version)
	if err != nil {
		return err
	}

	if err := h.settings.Save(c.Request().Context(), c.Param("scope"), version, req.Secret); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "credential saved"})
}

// Remove handles DELETE /v1/credentials/:scope?version=<v> — the scope falls
// back to the sandbox policy afterwards.
func (h *CredentialHandler) Remove(c echo.Context) error {
	version, err := domain.ParseVersion(c.QueryParam("version"))
	if err != nil {
		return err
	}

	if err := h.settings.Remove(c.Request().Context(), c.Param("scope"), version); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "credential removed"})
}
