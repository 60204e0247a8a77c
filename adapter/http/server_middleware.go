package http

import (
	"io"
	"net/http"

	"http-logging/application/usecase"
	"http-logging/domain/entity"
)

// LoggingMiddleware logs every exchange served by the wrapped handler.
type LoggingMiddleware struct {
	logger   *usecase.ExchangeLogger
	resolver EndpointResolver
}

// NewLoggingMiddleware creates the server-side logging middleware. resolver
// may be nil, in which case every exchange logs into the default channel.
func NewLoggingMiddleware(logger *usecase.ExchangeLogger, resolver EndpointResolver) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger, resolver: resolver}
}

func (m *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := entity.NewExchange(entity.InboundRequest, r.Method, absoluteURI(r), r.Header)
		ex.MediaType = entity.ParseMediaType(r.Header.Get("Content-Type"))
		if m.resolver != nil {
			ex.Endpoint, _ = m.resolver.Resolve(r)
		}
		if !m.logger.Enabled(ex) {
			next.ServeHTTP(w, r)
			return
		}
		if hasBody(r.Body) {
			ex.Body = r.Body
		}
		m.logger.ReceiveRequest(ex)
		if ex.Body != nil {
			r.Body = ex.Body
		}

		tw := &tappingResponseWriter{ResponseWriter: w, logger: m.logger, req: ex}
		completed := false
		defer func() {
			// a panicking handler leaves the status to the recovery middleware
			if completed && !tw.wroteHeader {
				tw.WriteHeader(http.StatusOK)
			}
			tw.finish()
		}()
		next.ServeHTTP(tw, r)
		completed = true
	})
}

// RegisterServer wraps h with the logging middleware.
func RegisterServer(h http.Handler, logger *usecase.ExchangeLogger, resolver EndpointResolver) http.Handler {
	return NewLoggingMiddleware(logger, resolver).Middleware(h)
}

// tappingResponseWriter logs the response once its status and headers are
// final, i.e. on the first WriteHeader or Write, and routes the body
// through the tap installed by the exchange logger. It never sets headers
// itself: a body written without a Content-Type is typed by net/http and
// is not logged.
type tappingResponseWriter struct {
	http.ResponseWriter
	logger *usecase.ExchangeLogger
	req    *entity.Exchange

	resp        *entity.Exchange
	sink        io.Writer
	wroteHeader bool
}

func (w *tappingResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	// informational responses may precede the final one
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.wroteHeader = true

	rx := entity.NewExchange(entity.OutboundResponse, w.req.Method, w.req.URI, w.Header().Clone())
	rx.ID = w.req.ID
	rx.Status = code
	rx.Reason = http.StatusText(code)
	rx.MediaType = entity.ParseMediaType(w.Header().Get("Content-Type"))
	rx.Sink = w.ResponseWriter
	w.logger.SendResponse(w.req, rx)

	w.resp = rx
	w.sink = rx.Sink
	w.ResponseWriter.WriteHeader(code)
}

func (w *tappingResponseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.sink.Write(p)
}

func (w *tappingResponseWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *tappingResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *tappingResponseWriter) finish() {
	if w.resp != nil {
		_ = w.logger.Finish(w.resp)
	}
}

// absoluteURI rebuilds the URI the client asked for.
func absoluteURI(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
