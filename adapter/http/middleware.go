package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	apierrors "http-logging/errors"
	"http-logging/domain/port"
)

const requestIDHeader = "X-Request-ID"

type RecoveryMiddleware struct {
	logger port.Logger
}

func NewRecoveryMiddleware(logger port.Logger) *RecoveryMiddleware {
	if logger == nil {
		logger = &port.NopLogger{}
	}
	return &RecoveryMiddleware{logger: logger}
}

// Middleware assigns a request ID and turns a panic into a JSON 500.
func (rm *RecoveryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := extractRequestID(r)
		r.Header.Set(requestIDHeader, reqID)
		w.Header().Set(requestIDHeader, reqID)

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				stackStr := string(debug.Stack())
				if len(stackStr) > 500 {
					stackStr = stackStr[:500] + "..."
				}

				rm.logger.Error("Panic recovered",
					port.RequestID(reqID),
					port.String("error", fmt.Sprintf("%v", err)),
					port.String("stack", stackStr),
				)

				apierrors.WriteJSONError(w, apierrors.ErrInternal, http.StatusInternalServerError, reqID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func extractRequestID(r *http.Request) string {
	reqID := r.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = r.Header.Get("X-Trace-ID")
	}
	if reqID == "" {
		reqID = "req_" + uuid.NewString()
	}
	return reqID
}
