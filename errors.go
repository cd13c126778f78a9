package transcript

import "fmt"

// APIError is the base type for all classified API failures. Every error
// returned for a non-2xx response carries the HTTP status code, the
// machine-readable error code from the body (if any), and a human-readable
// message.
type APIError struct {
	Message    string
	StatusCode int
	ErrorCode  string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// AuthError means the API key is invalid or missing (401).
type AuthError struct{ APIError }

// InsufficientCreditsError means the account lacks credits for the
// requested operation (402).
type InsufficientCreditsError struct{ APIError }

// NoCaptionsError means the video has no captions and ASR was not
// requested (404).
type NoCaptionsError struct{ APIError }

// RateLimitError means too many requests (429). RetryAfter is the server's
// hint in seconds, 0 when the server sent none.
type RateLimitError struct {
	APIError
	RetryAfter float64
}

// InvalidRequestError means invalid parameters or missing fields (4xx).
type InvalidRequestError struct{ APIError }

// ServerError is a 5xx failure. The client retries these with backoff
// before one reaches the caller.
type ServerError struct{ APIError }

// classify maps a final HTTP status plus decoded error body to a typed
// error. 2xx (including 202, which callers treat as accepted-with-body)
// returns nil. Pure classification, no I/O.
func classify(statusCode int, body map[string]any) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	msg := stringField(body, "message")
	if msg == "" {
		msg = stringField(body, "error")
	}
	if msg == "" {
		msg = fmt.Sprintf("API error %d", statusCode)
	}
	base := APIError{
		Message:    msg,
		StatusCode: statusCode,
		ErrorCode:  stringField(body, "error_code"),
	}

	switch {
	case statusCode == 401:
		return &AuthError{base}
	case statusCode == 402:
		return &InsufficientCreditsError{base}
	case statusCode == 404:
		return &NoCaptionsError{base}
	case statusCode == 429:
		retryAfter, _ := floatField(body, "retry_after")
		return &RateLimitError{APIError: base, RetryAfter: retryAfter}
	case statusCode >= 500:
		return &ServerError{base}
	case statusCode >= 400:
		return &InvalidRequestError{base}
	}
	return &base
}
