package handler

// trackRequest is the POST /v1/track body: a version-agnostic description of
// one upstream call. "data" is an accepted alias for "body", kept for older
// dashboard revisions that still send it.
type trackRequest struct {
	Version     string            `json:"version"     validate:"omitempty,oneof=v1 v1.2 v2 v2.0"`
	Endpoint    string            `json:"endpoint"    validate:"required"`
	Method      string            `json:"method"      validate:"omitempty,oneof=GET POST"`
	Params      map[string]string `json:"params"`
	Body        map[string]any    `json:"body"`
	Data        map[string]any    `json:"data"`
	ContentType string            `json:"contentType" validate:"omitempty,oneof=json form application/json application/x-www-form-urlencoded"`
}

type trackMetadata struct {
	Version   string `json:"version"`
	Endpoint  string `json:"endpoint"`
	Timestamp string `json:"timestamp"`
	TargetURL string `json:"targetUrl"`
}

// trackResponse is the transport wrapper returned for every forward, upstream
// failures included. Only malformed requests produce a non-200 wrapper.
type trackResponse struct {
	Success    bool          `json:"success"`
	Status     int           `json:"status"`
	StatusText string        `json:"statusText,omitempty"`
	Data       any           `json:"data"`
	Metadata   trackMetadata `json:"metadata"`
}

// webhookAck is the fire-and-forget acknowledgment for accepted webhooks.
type webhookAck struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TrackingNumber string `json:"tracking_number"`
}

type webhookError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// classifyResponse is the result of classifying one tracking identifier.
type classifyResponse struct {
	TrackingNumber string `json:"tracking_number"`
	Kind           string `json:"kind"`
	Carrier        string `json:"carrier,omitempty"`
}

// saveCredentialRequest is the PUT /v1/credentials/:scope body.
type saveCredentialRequest struct {
	Version string `json:"version" validate:"required,oneof=v1 v1.2 v2 v2.0"`
	Secret  string `json:"secret"  validate:"required,min=8"`
}

type messageResponse struct {
	Message string `json:"message"`
}
