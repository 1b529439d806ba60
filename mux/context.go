package mux

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type routeContextKey struct{}

var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted variables.
type routeContext struct {
	route *Route
	vars  map[string]string
}

// Vars returns the route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and a boolean
// indicating whether the variable exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.vars != nil {
		val, exists := rc.vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetURLVars(r *http.Request, val map[string]string) *http.Request {
	return setRouteContext(r, CurrentRoute(r), val)
}

func setRouteContext(r *http.Request, route *Route, vars map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, &routeContext{route: route, vars: vars})
	return r.WithContext(ctx)
}

// RouteMatch stores information about a matched route.
type RouteMatch struct {
	Route   *Route
	Handler http.Handler
	Vars    map[string]string

	// MatchErr is ErrMethodMismatch when the path matched but the method
	// did not, and ErrNotFound when nothing matched.
	MatchErr error
}

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler.
type MiddlewareFunc func(http.Handler) http.Handler

// WalkFunc is the type of the function called for each route visited by Walk.
type WalkFunc func(route *Route, router *Router) error

var (
	// ErrMethodMismatch is returned when the method in the request does not
	// match the method defined against the route.
	ErrMethodMismatch = errors.New("method is not allowed")

	// ErrNotFound is returned when no route match is found.
	ErrNotFound = errors.New("no matching route was found")

	// ErrBadTemplate is returned for a malformed path template.
	ErrBadTemplate = errors.New("mux: bad path template")

	// ErrNoPath is returned by GetPathTemplate for routes without a path.
	ErrNoPath = errors.New("mux: route doesn't have a path")

	// ErrNoMethods is returned by GetMethods for routes without methods.
	ErrNoMethods = errors.New("mux: route doesn't have methods")
)

func errRouteNamed(old, name string) error {
	return fmt.Errorf("mux: route already has name %q, can't set %q", old, name)
}
