package domain

import "fmt"

// ProviderVersion identifies one of the two incompatible revisions of the
// upstream tracking API. They differ in base URL, authentication mechanism,
// and body encoding conventions.
type ProviderVersion string

const (
	VersionV1 ProviderVersion = "v1"
	VersionV2 ProviderVersion = "v2"
)

// ParseVersion maps the caller-facing version strings onto a ProviderVersion.
// An empty string defaults to v1.2, which is a V1 revision.
func ParseVersion(s string) (ProviderVersion, error) {
	switch s {
	case "", "v1", "v1.2":
		return VersionV1, nil
	case "v2", "v2.0":
		return VersionV2, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, s)
	}
}

// BodyEncoding selects how a POST body is serialized for the upstream call.
// It is chosen explicitly by the caller, never auto-detected.
type BodyEncoding string

const (
	EncodingJSON BodyEncoding = "json"
	EncodingForm BodyEncoding = "form"
)

// TrackingRequest is a version-agnostic description of one upstream call.
// Constructed per call and never persisted.
type TrackingRequest struct {
	Version     ProviderVersion
	Endpoint    string
	Method      string // http.MethodGet or http.MethodPost
	QueryParams map[string]string
	BodyFields  map[string]any
	Encoding    BodyEncoding
}

// ProviderCredentials is an API secret scoped to an organization or user.
// Sourced from the external store; the secret is already de-obfuscated.
type ProviderCredentials struct {
	Version ProviderVersion
	Secret  string
	ScopeID string
	// Sandbox marks the per-version fallback credential used when no
	// scope-specific key is configured.
	Sandbox bool
}
