package domain

import "errors"

var (
	// ErrUnknownTrackingKind means the identifier matched no kind pattern.
	// Unlike status mapping, kind classification never defaults silently.
	ErrUnknownTrackingKind = errors.New("identifier matches no known tracking kind")

	// ErrCredentialNotConfigured means no credential exists for the scope and
	// version. Non-fatal: the gateway falls back to the sandbox credential.
	ErrCredentialNotConfigured = errors.New("no credential configured for scope")

	// ErrMissingTrackingNumber means a webhook payload carried neither a
	// container number nor an air-waybill number.
	ErrMissingTrackingNumber = errors.New("missing tracking number")

	// ErrMalformedPayload means a request or webhook body could not be decoded
	// at all. Distinct from ErrMissingTrackingNumber, which is valid JSON with
	// neither identifier present.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnsupportedVersion means the caller named a provider version outside
	// the supported set.
	ErrUnsupportedVersion = errors.New("unsupported provider version")

	// ErrCredentialNotFound is returned by the store when a delete or read
	// targets a scope that has no stored credential.
	ErrCredentialNotFound = errors.New("credential not found")
)
