package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// EndpointResolver maps a request to the handle of the route that serves
// it. The handle selects the log channel of the exchange.
type EndpointResolver interface {
	Resolve(r *http.Request) (endpoint string, ok bool)
}

// ResolverFunc adapts a function to EndpointResolver.
type ResolverFunc func(r *http.Request) (string, bool)

func (f ResolverFunc) Resolve(r *http.Request) (string, bool) {
	return f(r)
}

// ServeMuxResolver resolves the pattern a ServeMux would dispatch to,
// e.g. "POST /ping".
type ServeMuxResolver struct {
	Mux *http.ServeMux
}

func (m ServeMuxResolver) Resolve(r *http.Request) (string, bool) {
	if m.Mux == nil {
		return "", false
	}
	_, pattern := m.Mux.Handler(r)
	return pattern, pattern != ""
}

// ChiResolver resolves the chi route pattern, prefixed with the method,
// e.g. "POST /ping/{id}".
type ChiResolver struct {
	Mux *chi.Mux
}

func (c ChiResolver) Resolve(r *http.Request) (string, bool) {
	if c.Mux == nil {
		return "", false
	}
	rctx := chi.NewRouteContext()
	pattern := c.Mux.Find(rctx, r.Method, r.URL.Path)
	if pattern == "" {
		return "", false
	}
	return r.Method + " " + pattern, true
}

type endpointKey struct{}

// WithEndpoint tags an outgoing request context with the endpoint that
// issues it, so the client side can log into that endpoint's channel.
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

// EndpointFromContext returns the endpoint set by WithEndpoint.
func EndpointFromContext(ctx context.Context) (string, bool) {
	endpoint, ok := ctx.Value(endpointKey{}).(string)
	return endpoint, ok && endpoint != ""
}

// ContextResolver resolves the endpoint stored by WithEndpoint.
type ContextResolver struct{}

func (ContextResolver) Resolve(r *http.Request) (string, bool) {
	return EndpointFromContext(r.Context())
}

// FirstResolver tries each resolver in order.
func FirstResolver(resolvers ...EndpointResolver) EndpointResolver {
	return ResolverFunc(func(r *http.Request) (string, bool) {
		for _, res := range resolvers {
			if res == nil {
				continue
			}
			if endpoint, ok := res.Resolve(r); ok {
				return endpoint, true
			}
		}
		return "", false
	})
}
