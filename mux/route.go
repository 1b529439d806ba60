package mux

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

// Route stores information to match a request.
type Route struct {
	handler http.Handler
	tpl     *pathTemplate
	methods []string
	name    string
	err     error
}

// Match matches this route against the request. When the path matches but
// the method does not, match.MatchErr is set to ErrMethodMismatch.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil {
		return false
	}

	if r.tpl != nil && !r.tpl.match(req.URL.Path) {
		return false
	}

	if len(r.methods) > 0 && !slices.Contains(r.methods, req.Method) {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.Route = r
	match.Handler = r.handler
	match.MatchErr = nil
	if r.tpl != nil {
		match.Vars = r.tpl.vars(req.URL.Path)
	}
	return true
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// GetHandler returns the handler for the route, if any.
func (r *Route) GetHandler() http.Handler {
	return r.handler
}

// Name sets the name for the route.
func (r *Route) Name(name string) *Route {
	if r.name != "" {
		r.err = errors.Join(r.err, errRouteNamed(r.name, name))
		return r
	}
	r.name = name
	return r
}

// GetName returns the name for the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// Path adds a matcher for the URL path. The template must start with a
// slash and may hold variables, see the package documentation.
func (r *Route) Path(tpl string) *Route {
	r.setTemplate(tpl, false)
	return r
}

// PathPrefix adds a matcher for the URL path prefix.
func (r *Route) PathPrefix(tpl string) *Route {
	r.setTemplate(tpl, true)
	return r
}

func (r *Route) setTemplate(tpl string, prefix bool) {
	if r.err != nil {
		return
	}
	t, err := newPathTemplate(tpl, prefix)
	if err != nil {
		r.err = err
		return
	}
	r.tpl = t
}

// Methods adds a matcher for HTTP methods. Methods are compared in upper
// case per RFC 9110 Section 9.1.
func (r *Route) Methods(methods ...string) *Route {
	for _, m := range methods {
		r.methods = append(r.methods, strings.ToUpper(m))
	}
	return r
}

// GetPathTemplate returns the template used to build the route match.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.tpl == nil {
		return "", ErrNoPath
	}
	return r.tpl.template, nil
}

// GetPathRegexp returns the expanded regular expression used to match the
// route path.
func (r *Route) GetPathRegexp() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.tpl == nil {
		return "", ErrNoPath
	}
	return r.tpl.regexp.String(), nil
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.methods) == 0 {
		return nil, ErrNoMethods
	}
	return slices.Clone(r.methods), nil
}

// GetVarNames returns the names of the path variables in order.
func (r *Route) GetVarNames() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.tpl == nil {
		return nil, nil
	}
	return slices.Clone(r.tpl.varsN), nil
}

// GetError returns an error resulting from building the route, if any.
func (r *Route) GetError() error {
	return r.err
}
