package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"quizzz-client/internal/domain"
	"quizzz-client/internal/submit"
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	// Data is the raw structured payload (form_errors or data), if any.
	Data json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) UserMessage() string { return e.Message }

// FormErrors decodes the structured payload. Undecodable payloads are
// reported as absent.
func (e *APIError) FormErrors() *submit.FieldErrors {
	fe, err := submit.ParseFieldErrors(e.Data)
	if err != nil {
		return nil
	}
	return fe
}

// Is matches domain.ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

// FetchError is a transport failure or an unreadable success response.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport failure rather than a backend response.
func IsTransport(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

type envelope struct {
	UserMessage string          `json:"userMessage"`
	Message     string          `json:"message"`
	Detail      json.RawMessage `json:"detail"`
	Error       json.RawMessage `json:"error"`
	FormErrors  json.RawMessage `json:"form_errors"`
	Data        json.RawMessage `json:"data"`
}

// decodeError builds an APIError from a response body. Message precedence is
// userMessage, message, detail, error, then the HTTP status text.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// A bare list is a generic validation failure.
		if body[0] == '[' {
			apiErr.Data = json.RawMessage(body)
		}
		return apiErr
	}

	for _, candidate := range []string{env.UserMessage, env.Message, rawString(env.Detail), rawString(env.Error)} {
		if candidate != "" {
			apiErr.Message = candidate
			break
		}
	}
	switch {
	case len(env.FormErrors) > 0:
		apiErr.Data = env.FormErrors
	case len(env.Data) > 0:
		apiErr.Data = env.Data
	}
	return apiErr
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
