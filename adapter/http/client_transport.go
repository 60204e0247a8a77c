package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"http-logging/application/usecase"
	"http-logging/domain/entity"
)

// LoggingTransport logs every exchange that passes through Base.
type LoggingTransport struct {
	Base     http.RoundTripper
	Logger   *usecase.ExchangeLogger
	Resolver EndpointResolver
}

func (t *LoggingTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *LoggingTransport) resolver() EndpointResolver {
	if t.Resolver == nil {
		return ContextResolver{}
	}
	return t.Resolver
}

// RoundTrip never modifies req. When the body is tapped, a shallow copy of
// req carries the tapped body to Base.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Logger == nil {
		return t.base().RoundTrip(req)
	}

	uri := req.URL.String()
	ex := entity.NewExchange(entity.OutboundRequest, req.Method, uri, req.Header)
	ex.MediaType = entity.ParseMediaType(req.Header.Get("Content-Type"))
	ex.Endpoint, _ = t.resolver().Resolve(req)
	if hasBody(req.Body) {
		ex.Body = req.Body
	}
	t.Logger.SendRequest(ex)

	out := req
	if ex.Body != nil && ex.Body != req.Body {
		out = new(http.Request)
		*out = *req
		out.Body = ex.Body
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		_ = t.Logger.Finish(ex)
		return nil, err
	}

	rx := entity.NewExchange(entity.InboundResponse, req.Method, uri, resp.Header)
	rx.ID = ex.ID
	rx.Status = resp.StatusCode
	rx.Reason = reasonPhrase(resp)
	rx.MediaType = entity.ParseMediaType(resp.Header.Get("Content-Type"))
	if hasBody(resp.Body) {
		rx.Body = resp.Body
	}
	t.Logger.ReceiveResponse(ex, rx)
	if rx.Body != nil {
		resp.Body = rx.Body
	}
	return resp, nil
}

// RegisterClient installs a LoggingTransport on c. Calling it again on the
// same client does not wrap the transport twice.
func RegisterClient(c *http.Client, logger *usecase.ExchangeLogger) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	if lt, ok := c.Transport.(*LoggingTransport); ok {
		lt.Logger = logger
		return c
	}
	c.Transport = &LoggingTransport{Base: c.Transport, Logger: logger}
	return c
}

func hasBody(body io.ReadCloser) bool {
	return body != nil && body != http.NoBody
}

// reasonPhrase extracts "OK" from "200 OK".
func reasonPhrase(resp *http.Response) string {
	if reason, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok {
		return reason
	}
	if resp.Status == "" {
		return http.StatusText(resp.StatusCode)
	}
	return ""
}
