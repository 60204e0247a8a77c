package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"http-logging/domain/port"
	apierrors "http-logging/errors"
)

// PingEndpoint is the client-side endpoint handle of the POST /ping call.
const PingEndpoint = "ping.Api.Ping"

// pingCredential is the Basic credential sent by the indirect call; its
// password is long enough to keep the user part visible in the log.
const pingCredential = "Basic Zm9vOjEyMzQ1Njc4OTAxMjM0NTY="

const maxPingBody = 1 << 20

type PingMessage struct {
	Payload string `json:"payload"`
}

// PingHandler serves the ping fixture. Its client is expected to be
// registered with RegisterClient so the indirect call is logged too.
type PingHandler struct {
	client  *http.Client
	baseURL string
	errors  *ErrorPresenter
}

// NewPingHandler creates the handler. An empty baseURL makes the indirect
// call target the host the request came in on.
func NewPingHandler(client *http.Client, baseURL string, logger port.Logger) *PingHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &PingHandler{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		errors:  NewErrorPresenter(logger),
	}
}

// Routes lists both ping routes.
func (h *PingHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/ping", Handler: http.HandlerFunc(h.Ping)},
		{Method: http.MethodGet, Path: "/ping/indirect", Handler: http.HandlerFunc(h.Indirect)},
	}
}


// Ping answers {"payload":"x"} with {"payload":"pong:x"}.
func (h *PingHandler) Ping(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		h.errors.WriteError(w, r, apierrors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, err)
		return
	}

	var msg PingMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPingBody)).Decode(&msg); err != nil {
		h.errors.WriteError(w, r, apierrors.ErrInvalidJSON, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PingMessage{Payload: "pong:" + msg.Payload})
}

// Indirect calls POST /ping on this service through the client and relays
// the payload as text/plain "indirect:pong:x". The payload query parameter
// defaults to "test".
func (h *PingHandler) Indirect(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" {
		payload = "test"
	}

	reply, err := h.callPing(r, payload)
	if err != nil {
		h.errors.WriteError(w, r, apierrors.ErrUpstream, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "indirect:"+reply.Payload)
}

func (h *PingHandler) callPing(r *http.Request, payload string) (*PingMessage, error) {
	body, err := json.Marshal(PingMessage{Payload: payload})
	if err != nil {
		return nil, err
	}

	ctx := WithEndpoint(r.Context(), PingEndpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.pingURL(r), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", pingCredential)
	if reqID := r.Header.Get(requestIDHeader); reqID != "" {
		req.Header.Set(requestIDHeader, reqID)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ping returned %s", resp.Status)
	}
	var reply PingMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPingBody)).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode ping reply: %w", err)
	}
	return &reply, nil
}

func (h *PingHandler) pingURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + "/ping"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/ping"
}
