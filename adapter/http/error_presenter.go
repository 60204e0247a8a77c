package http

import (
	"net/http"

	"http-logging/domain/port"
	apierrors "http-logging/errors"
)

type ErrorPresenter struct {
	logger port.Logger
}

func NewErrorPresenter(logger port.Logger) *ErrorPresenter {
	if logger == nil {
		logger = &port.NopLogger{}
	}
	return &ErrorPresenter{logger: logger}
}

// WriteError logs apiErr with its cause and writes it as a JSON body.
// Client errors are logged at warn, everything else at error.
func (ep *ErrorPresenter) WriteError(w http.ResponseWriter, r *http.Request, apiErr apierrors.APIError, status int, cause error) {
	reqID := extractReqID(r)
	fields := []port.Field{
		port.String("error_code", apiErr.Code),
		port.StatusCode(status),
		port.String("path", r.URL.Path),
	}
	if reqID != "" {
		fields = append(fields, port.RequestID(reqID))
	}
	if cause != nil {
		fields = append(fields, port.Error(cause))
	}

	if status >= 400 && status < 500 {
		ep.logger.Warn("request rejected", fields...)
	} else {
		ep.logger.Error("request failed", fields...)
	}
	apierrors.WriteJSONError(w, apiErr, status, reqID)
}

func extractReqID(r *http.Request) string {
	if reqID := r.Header.Get(requestIDHeader); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Trace-ID")
}
