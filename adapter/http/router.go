package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router kinds accepted by NewRouter.
const (
	RouterServeMux = "servemux"
	RouterChi      = "chi"
)

// Route is one handler mounted by NewRouter.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Pattern returns the route as "METHOD /path", which is also the endpoint
// name both resolvers report for it.
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

// NewRouter mounts routes on the router named by kind and returns it with
// the resolver that names its endpoints.
func NewRouter(kind string, routes []Route) (http.Handler, EndpointResolver, error) {
	switch kind {
	case "", RouterServeMux:
		mux := http.NewServeMux()
		for _, rt := range routes {
			mux.Handle(rt.Pattern(), rt.Handler)
		}
		return mux, ServeMuxResolver{Mux: mux}, nil
	case RouterChi:
		mux := chi.NewRouter()
		for _, rt := range routes {
			mux.Method(rt.Method, rt.Path, rt.Handler)
		}
		return mux, ChiResolver{Mux: mux}, nil
	default:
		return nil, nil, fmt.Errorf("unknown router %q", kind)
	}
}
