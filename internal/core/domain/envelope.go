package domain

// UpstreamOutcome classifies the result of a single gateway attempt. Upstream
// application errors (non-2xx with a body) are OutcomeOK at the transport
// level; the envelope's Success flag carries the application-level verdict.
type UpstreamOutcome string

const (
	OutcomeOK        UpstreamOutcome = "ok"
	OutcomeTimeout   UpstreamOutcome = "timeout"
	OutcomeTransport UpstreamOutcome = "transport_error"
)

// UpstreamPayload is the two-variant decoding of an upstream response body:
// either parsed JSON, or the raw text the provider returned (maintenance
// pages, plain-text errors). Exactly one variant is populated.
type UpstreamPayload struct {
	JSON any
	Raw  string
}

// IsRaw reports whether the body failed JSON decoding and was kept as text.
func (p UpstreamPayload) IsRaw() bool { return p.JSON == nil }

// Value returns the payload in the shape handed to callers: the decoded JSON,
// or {"raw": text} for non-JSON bodies.
func (p UpstreamPayload) Value() any {
	if p.IsRaw() {
		return map[string]any{"raw": p.Raw}
	}
	return p.JSON
}

// UpstreamEnvelope is the normalized result of one gateway call, returned to
// the caller regardless of upstream outcome. TargetURL is always redacted.
type UpstreamEnvelope struct {
	Success    bool
	Outcome    UpstreamOutcome
	HTTPStatus int
	StatusText string
	Payload    UpstreamPayload
	TargetURL  string // auth material replaced with a fixed mask
	Version    ProviderVersion
	Endpoint   string
}
