package dataverse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind is the closed taxonomy the rest of dvx sees. Wire-level detail
// never leaves this package.
type ErrorKind int

const (
	// KindUnauthorized covers 401/403 responses: token expired, wrong tenant,
	// or the user lacks privileges on the target environment.
	KindUnauthorized ErrorKind = iota
	// KindNotFound covers 404 responses for a specific record or endpoint.
	KindNotFound
	// KindTransient covers transport failures, timeouts, throttling, and 5xx.
	KindTransient
	// KindMalformed covers responses that could not be decoded.
	KindMalformed
	// KindService covers everything else the service rejected, carrying the
	// OData error code and message when present.
	KindService
)

// String returns a short label for display in error banners.
func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed response"
	case KindService:
		return "service error"
	default:
		return "unknown"
	}
}

// APIError is the typed failure returned by every Client method.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("dataverse %s (%d %s): %s", e.Kind, e.Status, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("dataverse %s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("dataverse %s (status %d)", e.Kind, e.Status)
	default:
		return fmt.Sprintf("dataverse %s", e.Kind)
	}
}

// odataError matches the error envelope Dataverse returns on non-2xx.
type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyResponse maps an HTTP status plus body into the error taxonomy.
func classifyResponse(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope odataError
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" && len(body) > 0 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		apiErr.Message = msg
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Kind = KindUnauthorized
	case status == http.StatusNotFound:
		apiErr.Kind = KindNotFound
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		apiErr.Kind = KindTransient
	default:
		apiErr.Kind = KindService
	}
	return apiErr
}

func transportError(err error) *APIError {
	return &APIError{Kind: KindTransient, Message: err.Error()}
}

func malformedError(err error) *APIError {
	return &APIError{Kind: KindMalformed, Message: err.Error()}
}
