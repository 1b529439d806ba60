package mux

import (
	"net/http"
	"strings"
	"sync"
)

// Router registers routes to be matched and dispatches a handler.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/", handler)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	MethodNotAllowedHandler http.Handler

	routes      []*Route
	middlewares []MiddlewareFunc

	// handlerCache caches the middleware-wrapped handler per route.
	handlerCache sync.Map // map[*Route]http.Handler

	skipClean bool
}

// NewRouter returns a new router instance.
func NewRouter() *Router {
	return &Router{}
}

// ServeHTTP dispatches the handler registered in the matched route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Remove dot segments per RFC 3986 Section 5.2.4.
	if !r.skipClean {
		if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
			u := *req.URL
			u.Path = cleaned
			u.RawPath = ""
			req = req.Clone(req.Context())
			req.URL = &u
		}
	}

	var match RouteMatch
	var handler http.Handler

	switch {
	case r.Match(req, &match):
		handler = match.Handler
		if handler == nil {
			handler = http.NotFoundHandler()
		}
		req = setRouteContext(req, match.Route, match.Vars)
	case match.MatchErr == ErrMethodMismatch:
		// RFC 9110 Section 15.5.6: a 405 response MUST carry an Allow header.
		w.Header().Set("Allow", strings.Join(allowedMethods(r, req), ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = http.HandlerFunc(methodNotAllowed)
		}
	default:
		handler = r.NotFoundHandler
		if handler == nil {
			handler = http.NotFoundHandler()
		}
	}

	handler.ServeHTTP(w, req)
}

// Match attempts to match the given request against the router's routes.
// On failure match.MatchErr is ErrMethodMismatch when some route matched the
// path but not the method, and ErrNotFound otherwise.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	var methodMismatch bool

	for _, route := range r.routes {
		if route.Match(req, match) {
			if match.Handler != nil && len(r.middlewares) > 0 {
				match.Handler = r.wrapped(route, match.Handler)
			}
			return true
		}
		if match.MatchErr == ErrMethodMismatch {
			methodMismatch = true
		}
	}

	if methodMismatch {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.MatchErr = ErrNotFound
	return false
}

func (r *Router) wrapped(route *Route, handler http.Handler) http.Handler {
	if cached, ok := r.handlerCache.Load(route); ok {
		return cached.(http.Handler)
	}
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	r.handlerCache.Store(route, handler)
	return handler
}

// SkipClean disables dot-segment removal on request paths.
func (r *Router) SkipClean(value bool) *Router {
	r.skipClean = value
	return r
}

// NewRoute creates an empty route for configuration.
func (r *Router) NewRoute() *Route {
	route := &Route{}
	r.routes = append(r.routes, route)
	return route
}

// Handle registers a new route with a matcher for the URL path and handler.
func (r *Router) Handle(path string, handler http.Handler) *Route {
	return r.NewRoute().Path(path).Handler(handler)
}

// HandleFunc registers a new route with a matcher for the URL path and
// handler function.
func (r *Router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.NewRoute().Path(path).HandlerFunc(f)
}

// Path registers a new route with a matcher for the URL path.
func (r *Router) Path(tpl string) *Route {
	return r.NewRoute().Path(tpl)
}

// PathPrefix registers a new route with a matcher for the URL path prefix.
func (r *Router) PathPrefix(tpl string) *Route {
	return r.NewRoute().PathPrefix(tpl)
}

// Methods registers a new route with a matcher for HTTP methods.
func (r *Router) Methods(methods ...string) *Route {
	return r.NewRoute().Methods(methods...)
}

// Get returns the first route registered with the given name.
func (r *Router) Get(name string) *Route {
	for _, route := range r.routes {
		if route.name == name {
			return route
		}
	}
	return nil
}

// Walk calls walkFn for each route in registration order. It stops at the
// first error and returns it.
func (r *Router) Walk(walkFn WalkFunc) error {
	for _, route := range r.routes {
		if err := walkFn(route, r); err != nil {
			return err
		}
	}
	return nil
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
}
