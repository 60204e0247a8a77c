package entity

import (
	"io"
	"strings"

	"github.com/google/uuid"
)

// ExchangeID is a value object identifying one request/response exchange.
type ExchangeID string

// NewExchangeID creates a new random exchange ID.
func NewExchangeID() ExchangeID {
	return ExchangeID("ex_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:18])
}

// String returns the string representation.
func (id ExchangeID) String() string {
	return string(id)
}

// IsEmpty returns true if the ID is empty.
func (id ExchangeID) IsEmpty() bool {
	return string(id) == ""
}

// Direction tags an exchange with the side it is observed from.
type Direction int

const (
	// OutboundRequest is a request sent by a client.
	OutboundRequest Direction = iota
	// InboundResponse is the response a client receives.
	InboundResponse
	// InboundRequest is a request received by a server.
	InboundRequest
	// OutboundResponse is the response a server sends.
	OutboundResponse
)

// Arrow returns the log prefix for the direction.
// Client-side arrows have two characters, server-side arrows three.
func (d Direction) Arrow() string {
	switch d {
	case OutboundRequest:
		return ">>"
	case InboundResponse:
		return "<<"
	case InboundRequest:
		return ">>>"
	case OutboundResponse:
		return "<<<"
	default:
		return "??"
	}
}

func (d Direction) String() string {
	switch d {
	case OutboundRequest:
		return "outbound_request"
	case InboundResponse:
		return "inbound_response"
	case InboundRequest:
		return "inbound_request"
	case OutboundResponse:
		return "outbound_response"
	default:
		return "unknown"
	}
}

// Stage is the position of an exchange in the logging state machine.
// Stages only move forward.
type Stage int

const (
	StageNotStarted Stage = iota
	StageLineLogged
	StageHeadersLogged
	StageBodyHandled
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageLineLogged:
		return "line_logged"
	case StageHeadersLogged:
		return "headers_logged"
	case StageBodyHandled:
		return "body_handled"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Exchange is one HTTP request or response being processed.
//
// The core treats an exchange as read-only, except for Body (replaced by a
// replayable copy after draining, or by a tapping reader on the client
// side), Stage and Tap.
type Exchange struct {
	ID        ExchangeID
	Direction Direction
	Method    string
	URI       string
	// Status and Reason are only set on responses.
	Status int
	Reason string
	Header map[string][]string
	// MediaType is nil when the exchange declares no usable Content-Type.
	MediaType *MediaType
	// Endpoint is the resolved route handle, empty when unresolved.
	Endpoint string

	// Body is the byte source for inbound bodies and for the client's
	// outbound request body.
	Body io.ReadCloser
	// Sink is the byte sink for the server's outbound response body.
	Sink io.Writer

	Stage Stage
	// Tap is the pending finalizer of an outbound body, if any.
	Tap io.Closer
}

// NewExchange creates an exchange with a fresh ID.
func NewExchange(direction Direction, method, uri string, header map[string][]string) *Exchange {
	return &Exchange{
		ID:        NewExchangeID(),
		Direction: direction,
		Method:    method,
		URI:       uri,
		Header:    header,
	}
}

// HasBody reports whether the exchange carries a body stream.
func (e *Exchange) HasBody() bool {
	if e.Direction == OutboundResponse {
		return e.Sink != nil
	}
	return e.Body != nil
}

// Advance moves the exchange to the given stage. Moving backwards is ignored.
func (e *Exchange) Advance(to Stage) {
	if to > e.Stage {
		e.Stage = to
	}
}
