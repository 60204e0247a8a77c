package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

func (e APIError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrBadRequest       = APIError{Code: "BAD_REQUEST", Message: "invalid request"}
	ErrInvalidJSON      = APIError{Code: "INVALID_JSON", Message: "invalid JSON request body"}
	ErrUnsupportedMedia = APIError{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "expected application/json"}
	ErrRateLimited      = APIError{Code: "RATE_LIMITED", Message: "too many requests"}
	ErrUpstream         = APIError{Code: "UPSTREAM_FAILED", Message: "upstream call failed"}
	ErrInternal         = APIError{Code: "INTERNAL", Message: "internal server error"}
)

func WriteJSONError(w http.ResponseWriter, err APIError, status int, traceID string) {
	resp := err
	if traceID != "" {
		resp.TraceID = traceID
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func WriteJSONErrorWithMsg(w http.ResponseWriter, err APIError, status int, traceID, msg string) {
	resp := err
	resp.Message = msg
	WriteJSONError(w, resp, status, traceID)
}
