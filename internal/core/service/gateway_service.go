package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/api/metrics"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

const (
	defaultUpstreamTimeout = 30 * time.Second

	// v1AuthParam is the query-string (and form-body) token key for V1.
	v1AuthParam = "authCode"
	// v2AuthHeader carries the bearer-style token for V2. V2 never puts the
	// token in the URL.
	v2AuthHeader = "X-Api-Authorization"

	redactedMask = "***"
)

// GatewayConfig carries the per-version upstream settings.
type GatewayConfig struct {
	BaseURLV1 string
	BaseURLV2 string
	// Sandbox secrets are the documented fallback when a scope has no
	// configured credential; they keep demo/test traffic working.
	SandboxSecretV1 string
	SandboxSecretV2 string
	Timeout         time.Duration
}

// GatewayService translates version-agnostic tracking requests into upstream
// calls. Stateless between calls; exactly one upstream attempt per Forward —
// retries and their timeout budgets belong to the caller.
type GatewayService struct {
	resolver ports.CredentialResolver
	client   *http.Client
	cfg      GatewayConfig
	log      zerolog.Logger
}

// NewGatewayService builds a gateway. client == nil selects a plain
// http.Client; the per-call timeout is enforced via context, not the client.
func NewGatewayService(resolver ports.CredentialResolver, client *http.Client, cfg GatewayConfig, log zerolog.Logger) *GatewayService {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUpstreamTimeout
	}
	return &GatewayService{resolver: resolver, client: client, cfg: cfg, log: log}
}

// Forward executes one upstream attempt for req on behalf of scopeID.
// Timeouts and transport faults come back as structured envelopes, never as
// raw errors; an error return means the request itself could not be built.
func (s *GatewayService) Forward(ctx context.Context, scopeID string, req domain.TrackingRequest) (*domain.UpstreamEnvelope, error) {
	creds, err := s.credentialsFor(ctx, scopeID, req.Version)
	if err != nil {
		return nil, err
	}

	httpReq, redactedURL, err := s.buildRequest(ctx, req, creds.Secret)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	httpReq = httpReq.WithContext(callCtx)

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	metrics.GatewayUpstreamDuration.WithLabelValues(string(req.Version)).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := domain.OutcomeTransport
		httpStatus := http.StatusBadGateway
		statusText := "upstream unreachable"
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			outcome = domain.OutcomeTimeout
			httpStatus = http.StatusRequestTimeout
			statusText = "upstream timeout"
		}
		metrics.GatewayRequestsTotal.WithLabelValues(string(req.Version), string(outcome)).Inc()
		s.log.Warn().
			Str("version", string(req.Version)).
			Str("endpoint", req.Endpoint).
			Str("target_url", redactedURL).
			Str("outcome", string(outcome)).
			Msg("upstream call failed")
		return &domain.UpstreamEnvelope{
			Success:    false,
			Outcome:    outcome,
			HTTPStatus: httpStatus,
			StatusText: statusText,
			Payload:    domain.UpstreamPayload{Raw: err.Error()},
			TargetURL:  redactedURL,
			Version:    req.Version,
			Endpoint:   req.Endpoint,
		}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(string(req.Version), string(domain.OutcomeTransport)).Inc()
		return &domain.UpstreamEnvelope{
			Success:    false,
			Outcome:    domain.OutcomeTransport,
			HTTPStatus: http.StatusBadGateway,
			StatusText: "failed reading upstream response",
			Payload:    domain.UpstreamPayload{Raw: err.Error()},
			TargetURL:  redactedURL,
			Version:    req.Version,
			Endpoint:   req.Endpoint,
		}, nil
	}

	metrics.GatewayRequestsTotal.WithLabelValues(string(req.Version), string(domain.OutcomeOK)).Inc()

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	s.log.Debug().
		Str("version", string(req.Version)).
		Str("endpoint", req.Endpoint).
		Str("target_url", redactedURL).
		Int("status", resp.StatusCode).
		Bool("success", success).
		Bool("sandbox", creds.Sandbox).
		Msg("upstream call completed")

	return &domain.UpstreamEnvelope{
		Success:    success,
		Outcome:    domain.OutcomeOK,
		HTTPStatus: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Payload:    decodeBody(body),
		TargetURL:  redactedURL,
		Version:    req.Version,
		Endpoint:   req.Endpoint,
	}, nil
}

// credentialsFor resolves the scope credential, falling back to the
// per-version sandbox secret when none is configured. NotConfigured is a
// debug-level signal, not an error; the fallback is marked as sandbox.
func (s *GatewayService) credentialsFor(ctx context.Context, scopeID string, version domain.ProviderVersion) (*domain.ProviderCredentials, error) {
	creds, err := s.resolver.Resolve(ctx, scopeID, version)
	switch {
	case errors.Is(err, domain.ErrCredentialNotConfigured):
		s.log.Debug().
			Str("scope_id", scopeID).
			Str("version", string(version)).
			Msg("no scoped credential, using sandbox fallback")
		secret := s.cfg.SandboxSecretV1
		if version == domain.VersionV2 {
			secret = s.cfg.SandboxSecretV2
		}
		return &domain.ProviderCredentials{
			Version: version,
			Secret:  secret,
			ScopeID: scopeID,
			Sandbox: true,
		}, nil
	case err != nil:
		return nil, err
	}
	return creds, nil
}

// buildRequest assembles the upstream URL, headers, and body for the target
// version. The second return is the redacted URL for envelopes and logs.
func (s *GatewayService) buildRequest(ctx context.Context, req domain.TrackingRequest, secret string) (*http.Request, string, error) {
	base := s.cfg.BaseURLV1
	if req.Version == domain.VersionV2 {
		base = s.cfg.BaseURLV2
	}
	target := strings.TrimRight(base, "/") + normalizeEndpoint(req.Endpoint)

	u, err := url.Parse(target)
	if err != nil {
		return nil, "", fmt.Errorf("parse target url: %w", err)
	}

	q := u.Query()
	for k, v := range req.QueryParams {
		if req.Version == domain.VersionV1 && k == v1AuthParam {
			// The caller cannot override or duplicate the token key.
			continue
		}
		q.Set(k, v)
	}
	if req.Version == domain.VersionV1 {
		q.Set(v1AuthParam, secret)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	contentType := ""
	if req.Method == http.MethodPost {
		switch req.Encoding {
		case domain.EncodingForm:
			form := url.Values{}
			for k, v := range req.BodyFields {
				form.Set(k, fmt.Sprint(v))
			}
			if req.Version == domain.VersionV1 {
				// V1 requires the token in both the query string and the
				// form body for POST. Intentional duplication.
				form.Set(v1AuthParam, secret)
			}
			body = strings.NewReader(form.Encode())
			contentType = "application/x-www-form-urlencoded"
		default:
			fields := req.BodyFields
			if fields == nil {
				fields = map[string]any{}
			}
			encoded, err := json.Marshal(fields)
			if err != nil {
				return nil, "", fmt.Errorf("encode json body: %w", err)
			}
			body = bytes.NewReader(encoded)
			contentType = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, "", err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Version == domain.VersionV2 {
		httpReq.Header.Set(v2AuthHeader, "Bearer "+secret)
	}

	return httpReq, redactURL(u, secret), nil
}

// normalizeEndpoint guarantees a single leading slash.
func normalizeEndpoint(endpoint string) string {
	e := strings.TrimSpace(endpoint)
	if !strings.HasPrefix(e, "/") {
		e = "/" + e
	}
	return e
}

// redactURL replaces the auth token (and any other occurrence of the secret)
// with a fixed mask before the URL leaves the gateway.
func redactURL(u *url.URL, secret string) string {
	clone := *u
	q := clone.Query()
	if q.Has(v1AuthParam) {
		q.Set(v1AuthParam, redactedMask)
	}
	clone.RawQuery = q.Encode()

	out := clone.String()
	if secret != "" {
		out = strings.ReplaceAll(out, url.QueryEscape(secret), redactedMask)
		out = strings.ReplaceAll(out, secret, redactedMask)
	}
	return out
}

// decodeBody attempts JSON first; non-JSON bodies (maintenance pages,
// plain-text errors) are surfaced as raw text, never as a decode error.
func decodeBody(body []byte) domain.UpstreamPayload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return domain.UpstreamPayload{JSON: map[string]any{}}
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return domain.UpstreamPayload{Raw: string(body)}
	}
	return domain.UpstreamPayload{JSON: decoded}
}
