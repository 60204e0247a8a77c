package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"http-logging/domain/entity"
	"http-logging/domain/port"
	"http-logging/domain/service"
)

// DefaultMaxBodyBytes bounds how much of a body is buffered for logging.
const DefaultMaxBodyBytes int64 = 64 * 1024

// Default channel names, used when no endpoint-level channel is resolved.
const (
	DefaultClientChannel = "http-logging.client"
	DefaultServerChannel = "http-logging.server"
)

// ExchangeLoggerConfig configures an ExchangeLogger.
type ExchangeLoggerConfig struct {
	// DefaultChannel is this logger's own channel name.
	DefaultChannel string
	// MaxBodyBytes caps buffered body bytes; <= 0 means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// HiddenHeaders are always logged as <hidden>, in addition to the
	// Authorization handling.
	HiddenHeaders []string
}

// ExchangeLogger logs the exchanges of one role (client or server).
//
// Outbound bodies are produced over time, so they are tapped while being
// written. Inbound bodies are already complete, so they are drained, logged
// and replaced by a replayable copy.
type ExchangeLogger struct {
	selector       port.LoggerSelector
	metrics        port.MetricsProvider
	redactor       *service.Redactor
	defaultChannel string
	maxBody        int64
}

// NewExchangeLogger creates a new exchange logger.
func NewExchangeLogger(selector port.LoggerSelector, metrics port.MetricsProvider, cfg ExchangeLoggerConfig) *ExchangeLogger {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &ExchangeLogger{
		selector:       selector,
		metrics:        metrics,
		redactor:       service.NewRedactor(cfg.HiddenHeaders...),
		defaultChannel: cfg.DefaultChannel,
		maxBody:        cfg.MaxBodyBytes,
	}
}

// DefaultChannel returns the fallback channel name.
func (l *ExchangeLogger) DefaultChannel() string {
	return l.defaultChannel
}

// Enabled reports whether ex would be logged at all. Callers use it to stay
// out of the way entirely when debug logging is off; it does not count the
// exchange.
func (l *ExchangeLogger) Enabled(ex *entity.Exchange) bool {
	if ex == nil || l.selector == nil {
		return false
	}
	_, debug := l.selector.Select(ex, l.defaultChannel)
	return debug
}

// SendRequest logs an outgoing client request and taps its body.
func (l *ExchangeLogger) SendRequest(req *entity.Exchange) {
	log, ok := l.resolve(req)
	if !ok {
		return
	}
	log.Debug(fmt.Sprintf("sending %s request %s", req.Method, req.URI))
	req.Advance(entity.StageLineLogged)

	l.logHeaders(log, req, l.redactor.Redact)
	req.Advance(entity.StageHeadersLogged)

	if req.HasBody() {
		if service.IsLoggable(req.MediaType) {
			tap := l.newTap(io.Discard, req, log)
			req.Body = NewTapReader(req.Body, tap)
			req.Tap = tap
		} else {
			l.metrics.ObserveBody(req.Direction.String(), port.BodySkippedType, 0)
		}
	}
	req.Advance(entity.StageBodyHandled)
}

// ReceiveResponse flushes the request body lines, then logs the response
// the client received and replaces its body with a replayable copy.
func (l *ExchangeLogger) ReceiveResponse(req, resp *entity.Exchange) {
	if req != nil {
		_ = l.Finish(req)
	}
	inheritEndpoint(req, resp)

	log, ok := l.resolve(resp)
	if !ok {
		return
	}
	method, uri := requestLine(req, resp)
	log.Debug(fmt.Sprintf("got response for %s %s", method, uri))
	log.Debug(statusLine(resp))
	resp.Advance(entity.StageLineLogged)

	l.logHeaders(log, resp, plainJoin)
	resp.Advance(entity.StageHeadersLogged)

	l.drainAndReplace(log, resp)
	resp.Advance(entity.StageDone)
}

// ReceiveRequest logs a request the server received and replaces its body
// with a replayable copy.
func (l *ExchangeLogger) ReceiveRequest(req *entity.Exchange) {
	log, ok := l.resolve(req)
	if !ok {
		return
	}
	log.Debug(fmt.Sprintf("got %s request %s", req.Method, req.URI))
	req.Advance(entity.StageLineLogged)

	l.logHeaders(log, req, l.redactor.Redact)
	req.Advance(entity.StageHeadersLogged)

	l.drainAndReplace(log, req)
	req.Advance(entity.StageDone)
}

// SendResponse logs the response a server is about to write and taps its
// body sink. The caller must call Finish once the body is written.
func (l *ExchangeLogger) SendResponse(req, resp *entity.Exchange) {
	inheritEndpoint(req, resp)

	log, ok := l.resolve(resp)
	if !ok {
		return
	}
	method, uri := requestLine(req, resp)
	log.Debug(fmt.Sprintf("sending response for %s %s", method, uri))
	log.Debug(statusLine(resp))
	resp.Advance(entity.StageLineLogged)

	l.logHeaders(log, resp, plainJoin)
	resp.Advance(entity.StageHeadersLogged)

	if resp.HasBody() {
		if service.IsLoggable(resp.MediaType) {
			tap := l.newTap(resp.Sink, resp, log)
			resp.Sink = tap
			resp.Tap = tap
		} else {
			l.metrics.ObserveBody(resp.Direction.String(), port.BodySkippedType, 0)
		}
	}
	resp.Advance(entity.StageBodyHandled)
}

// Finish finalizes the remembered tap of an outbound exchange, if any.
// It is safe to call more than once.
func (l *ExchangeLogger) Finish(ex *entity.Exchange) error {
	if ex == nil || ex.Stage == entity.StageNotStarted {
		return nil
	}
	var err error
	if ex.Tap != nil {
		err = ex.Tap.Close()
	}
	ex.Advance(entity.StageDone)
	return err
}

func (l *ExchangeLogger) resolve(ex *entity.Exchange) (port.Logger, bool) {
	if ex == nil || l.selector == nil {
		return nil, false
	}
	channel, debug := l.selector.Select(ex, l.defaultChannel)
	if !debug {
		return nil, false
	}
	l.metrics.IncExchanges(ex.Direction.String())
	return l.selector.Channel(channel).With(port.ExchangeID(ex.ID.String())), true
}

func (l *ExchangeLogger) logHeaders(log port.Logger, ex *entity.Exchange, format func(string, []string) string) {
	names := make([]string, 0, len(ex.Header))
	for name := range ex.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	arrow := ex.Direction.Arrow()
	for _, name := range names {
		log.Debug(fmt.Sprintf("%s %s: %s", arrow, name, format(name, ex.Header[name])))
	}
}

func (l *ExchangeLogger) newTap(sink io.Writer, ex *entity.Exchange, log port.Logger) *StreamTap {
	tap := NewStreamTap(sink, ex.Direction.Arrow(), log, service.Charset(ex.MediaType), l.maxBody)
	direction := ex.Direction.String()
	tap.onFlush = func(n int, truncated bool) {
		outcome := port.BodyLogged
		if truncated {
			outcome = port.BodyTruncated
		}
		l.metrics.ObserveBody(direction, outcome, n)
	}
	return tap
}

func (l *ExchangeLogger) drainAndReplace(log port.Logger, ex *entity.Exchange) {
	defer ex.Advance(entity.StageBodyHandled)

	if !ex.HasBody() {
		return
	}
	direction := ex.Direction.String()
	if !service.IsLoggable(ex.MediaType) {
		l.metrics.ObserveBody(direction, port.BodySkippedType, 0)
		return
	}

	arrow := ex.Direction.Arrow()
	original := ex.Body
	data, err := io.ReadAll(io.LimitReader(original, l.maxBody+1))
	if err != nil {
		log.Debug(arrow+" body not logged", port.Error(err))
		ex.Body = &replayBody{r: bytes.NewReader(data), err: err, closer: original}
		l.metrics.ObserveBody(direction, port.BodyReadError, 0)
		return
	}
	if int64(len(data)) > l.maxBody {
		log.Debug(fmt.Sprintf("%s ... body exceeds max debug size of %d bytes", arrow, l.maxBody),
			port.MaxBytes(l.maxBody))
		ex.Body = &replayBody{r: io.MultiReader(bytes.NewReader(data), original), closer: original}
		l.metrics.ObserveBody(direction, port.BodyTruncated, 0)
		return
	}

	for _, line := range service.SplitLines(service.Decode(service.Charset(ex.MediaType), data)) {
		log.Debug(arrow+" "+line, port.BodyLine())
	}
	ex.Body = &replayBody{r: bytes.NewReader(data), closer: original}
	l.metrics.ObserveBody(direction, port.BodyLogged, len(data))
}

// replayBody replays drained bytes. Close still closes the original stream.
// A read error hit while draining is returned once the replayed bytes are
// exhausted, so downstream readers see the same failure.
type replayBody struct {
	r      io.Reader
	err    error
	closer io.Closer
}

func (b *replayBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if errors.Is(err, io.EOF) && b.err != nil {
		return n, b.err
	}
	return n, err
}

func (b *replayBody) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func plainJoin(_ string, values []string) string {
	return service.Join(values)
}

func statusLine(resp *entity.Exchange) string {
	line := fmt.Sprintf("%s Status: %d", resp.Direction.Arrow(), resp.Status)
	if resp.Reason != "" {
		line += " " + resp.Reason
	}
	return line
}

func requestLine(req, resp *entity.Exchange) (string, string) {
	if req != nil {
		return req.Method, req.URI
	}
	return resp.Method, resp.URI
}

func inheritEndpoint(req, resp *entity.Exchange) {
	if req != nil && resp != nil && resp.Endpoint == "" {
		resp.Endpoint = req.Endpoint
	}
}
