package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

// scopeHeader carries the organization/user scope resolved by the dashboard.
// An absent scope runs under the sandbox credential policy.
const scopeHeader = "X-Scope-ID"

// GatewayHandler exposes the upstream proxy surface consumed by the dashboard.
type GatewayHandler struct {
	gateway ports.Gateway
}

func NewGatewayHandler(gateway ports.Gateway) *GatewayHandler {
	return &GatewayHandler{gateway: gateway}
}

// Track handles POST /v1/track — forwards one version-agnostic tracking
// request. Upstream failures still return a 200 wrapper; only a malformed
// request body produces a non-200 status.
func (h *GatewayHandler) Track(c echo.Context) error {
	var req trackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.forward(c, req)
}

// TrackQuery handles GET /v1/track — version and endpoint arrive as query
// parameters, everything else is passed through to the upstream.
func (h *GatewayHandler) TrackQuery(c echo.Context) error {
	req := trackRequest{
		Version:  c.QueryParam("version"),
		Endpoint: c.QueryParam("endpoint"),
		Method:   http.MethodGet,
		Params:   map[string]string{},
	}
	if req.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "endpoint is required")
	}
	for k, vs := range c.QueryParams() {
		if k == "version" || k == "endpoint" || len(vs) == 0 {
			continue
		}
		req.Params[k] = vs[0]
	}
	return h.forward(c, req)
}

func (h *GatewayHandler) forward(c echo.Context, req trackRequest) error {
	version, err := domain.ParseVersion(req.Version)
	if err != nil {
		return err
	}

	body := req.Body
	if body == nil {
		body = req.Data
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	envelope, err := h.gateway.Forward(c.Request().Context(), c.Request().Header.Get(scopeHeader), domain.TrackingRequest{
		Version:     version,
		Endpoint:    req.Endpoint,
		Method:      method,
		QueryParams: req.Params,
		BodyFields:  body,
		Encoding:    parseEncoding(req.ContentType),
	})
	if err != nil {
		return err
	}

	displayVersion := req.Version
	if displayVersion == "" {
		displayVersion = "v1.2"
	}

	return c.JSON(http.StatusOK, trackResponse{
		Success:    envelope.Success,
		Status:     envelope.HTTPStatus,
		StatusText: envelope.StatusText,
		Data:       envelope.Payload.Value(),
		Metadata: trackMetadata{
			Version:   displayVersion,
			Endpoint:  envelope.Endpoint,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			TargetURL: envelope.TargetURL,
		},
	})
}

// parseEncoding maps the caller's contentType field onto a body encoding.
// JSON is the default; form encoding must be selected explicitly.
func parseEncoding(contentType string) domain.BodyEncoding {
	switch contentType {
	case "form", "application/x-www-form-urlencoded":
		return domain.EncodingForm
	default:
		return domain.EncodingJSON
	}
}
