// Package mux implements a small request router for mounting handlers on
// path templates.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//
// # Router
//
// Create a new router and register handlers:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/docs/swagger.json", specHandler).Methods(http.MethodGet)
//	r.HandleFunc("/docs/{file:.*}", assetHandler).Methods(http.MethodGet)
//	http.ListenAndServe(":8080", r)
//
// Routes are matched in registration order; the first route whose template
// and method match handles the request.
//
// # Path Variables
//
// Templates can hold variables enclosed in curly braces, optionally
// followed by a colon and a regular expression:
//
//	r.HandleFunc("/users/{id}", handler)           // one segment
//	r.HandleFunc("/static/{file:.*}", handler)     // remainder of the path
//	r.HandleFunc("/pets/{id:[0-9]+}", handler)
//
// Without a pattern a variable matches one path segment ("[^/]+").
// Patterns must not contain capturing groups; use (?:...) instead.
//
//	vars := mux.Vars(r)
//	file := vars["file"]
//
// # Error Handling
//
// NotFoundHandler is called when no route matches. If nil,
// http.NotFoundHandler() is used.
//
// MethodNotAllowedHandler is called when a route matches the path but not
// the method. The Allow header is always set before this handler is invoked,
// per RFC 9110 Section 15.5.6.
//
// # Path Cleaning
//
// The router cleans request paths by removing dot segments per RFC 3986
// Section 5.2.4 before matching. SkipClean disables this behavior.
//
// # Middleware
//
// Middleware wraps matched handlers only:
//
//	r.Use(muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{}))
//
// # Walking Routes
//
// Walk calls a function for each registered route in registration order:
//
//	r.Walk(func(route *mux.Route, _ *mux.Router) error {
//	    tpl, _ := route.GetPathTemplate()
//	    fmt.Println(tpl)
//	    return nil
//	})
package mux
