package grader

import "fmt"

// ConfigurationError means no credential for the model is configured. It is
// returned before any network I/O; the caller is expected to surface a
// key-configuration action, not a generic failure.
type ConfigurationError struct{}

func (*ConfigurationError) Error() string {
	return "no Gemini API key is configured"
}

// EmptyResponseError means the model returned no content at all.
type EmptyResponseError struct{}

func (*EmptyResponseError) Error() string {
	return "model returned an empty response"
}

// MalformedResponseError means the model's output did not parse as the
// declared report schema. It wraps the parse failure.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model output does not match the report schema: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// UpstreamError carries any other failure reported by the model API: rate
// limits, transient faults, content policy. It is propagated as-is; there is
// no local retry.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini error (status %d): %s", e.StatusCode, e.Body)
}
