package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

func TestClassify_Container(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/classify?number=MSCU1234567", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewClassifyHandler()
	if err := h.Classify(c); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	var resp classifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != string(domain.KindContainer) || resp.Carrier != "MSC" {
		t.Errorf("resp = %+v, want CONTAINER/MSC", resp)
	}
}

func TestClassify_UnknownKindSurfacesError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/classify?number=!!", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewClassifyHandler()
	err := h.Classify(c)
	if !errors.Is(err, domain.ErrUnknownTrackingKind) {
		t.Errorf("expected ErrUnknownTrackingKind, got %v", err)
	}
}

func TestClassify_MissingNumber(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/classify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewClassifyHandler()
	err := h.Classify(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("error = %v, want 400", err)
	}
}
