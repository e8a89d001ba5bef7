package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

type stubGateway struct {
	gotScope string
	gotReq   domain.TrackingRequest
	envelope *domain.UpstreamEnvelope
	err      error
}

func (g *stubGateway) Forward(_ context.Context, scopeID string, req domain.TrackingRequest) (*domain.UpstreamEnvelope, error) {
	g.gotScope = scopeID
	g.gotReq = req
	return g.envelope, g.err
}

func okEnvelope() *domain.UpstreamEnvelope {
	return &domain.UpstreamEnvelope{
		Success:    true,
		Outcome:    domain.OutcomeOK,
		HTTPStatus: http.StatusOK,
		StatusText: "OK",
		Payload:    domain.UpstreamPayload{JSON: map[string]any{"result": "fine"}},
		TargetURL:  "https://api.example.com/v1.2/track?authCode=***",
		Version:    domain.VersionV1,
		Endpoint:   "/track",
	}
}

func newTrackContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTrack_PostForwardsAndWraps(t *testing.T) {
	gw := &stubGateway{envelope: okEnvelope()}
	h := NewGatewayHandler(gw)

	c, rec := newTrackContext(http.MethodPost, "/v1/track",
		`{"version":"v1.2","endpoint":"track","method":"POST","params":{"foo":"bar"},"body":{"container":"MSCU1234567"},"contentType":"form"}`)
	c.Request().Header.Set(scopeHeader, "org-1")

	if err := h.Track(c); err != nil {
		t.Fatalf("Track: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("wrapper status = %d, want 200", rec.Code)
	}
	if gw.gotScope != "org-1" {
		t.Errorf("scope = %q", gw.gotScope)
	}
	if gw.gotReq.Version != domain.VersionV1 {
		t.Errorf("version = %s, want v1", gw.gotReq.Version)
	}
	if gw.gotReq.Method != http.MethodPost {
		t.Errorf("method = %s", gw.gotReq.Method)
	}
	if gw.gotReq.Encoding != domain.EncodingForm {
		t.Errorf("encoding = %s, want form", gw.gotReq.Encoding)
	}
	if gw.gotReq.QueryParams["foo"] != "bar" {
		t.Errorf("params = %v", gw.gotReq.QueryParams)
	}

	var resp trackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != http.StatusOK {
		t.Errorf("response = %+v", resp)
	}
	if resp.Metadata.Version != "v1.2" || resp.Metadata.TargetURL == "" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestTrack_DataAliasAccepted(t *testing.T) {
	gw := &stubGateway{envelope: okEnvelope()}
	h := NewGatewayHandler(gw)

	c, _ := newTrackContext(http.MethodPost, "/v1/track",
		`{"endpoint":"track","method":"POST","data":{"container":"MSCU1234567"}}`)

	if err := h.Track(c); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if gw.gotReq.BodyFields["container"] != "MSCU1234567" {
		t.Errorf("data alias not mapped to body fields: %v", gw.gotReq.BodyFields)
	}
}

func TestTrack_DefaultsToV12(t *testing.T) {
	gw := &stubGateway{envelope: okEnvelope()}
	h := NewGatewayHandler(gw)

	c, rec := newTrackContext(http.MethodPost, "/v1/track", `{"endpoint":"/track"}`)
	if err := h.Track(c); err != nil {
		t.Fatalf("Track: %v", err)
	}

	if gw.gotReq.Version != domain.VersionV1 {
		t.Errorf("version = %s, want v1 (default v1.2)", gw.gotReq.Version)
	}
	if gw.gotReq.Method != http.MethodGet {
		t.Errorf("method = %s, want default GET", gw.gotReq.Method)
	}

	var resp trackResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Metadata.Version != "v1.2" {
		t.Errorf("metadata version = %q, want v1.2", resp.Metadata.Version)
	}
}

func TestTrack_UpstreamFailureStillWrapped200(t *testing.T) {
	gw := &stubGateway{envelope: &domain.UpstreamEnvelope{
		Success:    false,
		Outcome:    domain.OutcomeTimeout,
		HTTPStatus: http.StatusRequestTimeout,
		StatusText: "upstream timeout",
		Payload:    domain.UpstreamPayload{Raw: "context deadline exceeded"},
		TargetURL:  "https://api.example.com/v1.2/track?authCode=***",
		Version:    domain.VersionV1,
		Endpoint:   "/track",
	}}
	h := NewGatewayHandler(gw)

	c, rec := newTrackContext(http.MethodPost, "/v1/track", `{"endpoint":"/track"}`)
	if err := h.Track(c); err != nil {
		t.Fatalf("Track: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("wrapper status = %d, want 200 even on upstream failure", rec.Code)
	}
	var resp trackResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success || resp.Status != http.StatusRequestTimeout {
		t.Errorf("response = %+v, want success=false status=408", resp)
	}
}

func TestTrack_MalformedBodyIs400(t *testing.T) {
	h := NewGatewayHandler(&stubGateway{envelope: okEnvelope()})

	c, _ := newTrackContext(http.MethodPost, "/v1/track", `{"endpoint": `)
	err := h.Track(c)
	if err == nil {
		t.Fatalf("expected error for malformed body")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("error = %v, want 400 HTTPError", err)
	}
}

func TestTrackQuery_BuildsRequestFromQueryString(t *testing.T) {
	gw := &stubGateway{envelope: okEnvelope()}
	h := NewGatewayHandler(gw)

	c, rec := newTrackContext(http.MethodGet, "/v1/track?version=v2&endpoint=/shipments&awb=176-12345678", "")
	if err := h.TrackQuery(c); err != nil {
		t.Fatalf("TrackQuery: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gw.gotReq.Version != domain.VersionV2 {
		t.Errorf("version = %s, want v2", gw.gotReq.Version)
	}
	if gw.gotReq.QueryParams["awb"] != "176-12345678" {
		t.Errorf("params = %v", gw.gotReq.QueryParams)
	}
	if _, ok := gw.gotReq.QueryParams["version"]; ok {
		t.Errorf("version must not be passed through as an upstream param")
	}
}

func TestTrackQuery_MissingEndpoint(t *testing.T) {
	h := NewGatewayHandler(&stubGateway{envelope: okEnvelope()})

	c, _ := newTrackContext(http.MethodGet, "/v1/track?version=v1", "")
	err := h.TrackQuery(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("error = %v, want 400", err)
	}
}
