package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/swaggerpage/mux"
)

// ErrNoCacheControlRules is returned when CacheControlConfig.Rules is empty.
var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// CacheControlRule selects a Cache-Control value for matching responses.
// A rule with neither Path nor ContentType matches every response.
type CacheControlRule struct {
	// Path is a path.Match pattern applied to the last element of the
	// request path, e.g. "swagger.json" or "*.js".
	Path string

	// ContentType is a case-insensitive prefix of the response
	// Content-Type, e.g. "text/css".
	ContentType string

	// Value is the Cache-Control header value, e.g. "no-cache".
	Value string
}

// CacheControlConfig configures the CacheControl middleware behaviour.
type CacheControlConfig struct {
	// Rules are evaluated in order and the first match wins. Required.
	Rules []CacheControlRule
}

// DocsCacheRules returns rules for a documentation page: the document and
// the viewer pages that embed its URL are revalidated on every load, and
// every other bundle file is cached publicly for maxAge.
func DocsCacheRules(maxAge time.Duration) []CacheControlRule {
	return []CacheControlRule{
		{Path: "swagger.json", Value: "no-cache"},
		{Path: "index.html", Value: "no-cache"},
		{Path: "swagger-initializer.js", Value: "no-cache"},
		{Value: "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))},
	}
}

// CacheControlMiddleware returns a middleware that sets Cache-Control on
// successful and redirect responses that do not set one themselves. Error
// responses are never marked cacheable.
//
// It returns ErrNoCacheControlRules if Rules is empty, and an error wrapping
// path.ErrBadPattern for a malformed Path.
func CacheControlMiddleware(cfg CacheControlConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	rules := make([]CacheControlRule, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		if rule.Path != "" {
			if _, err := path.Match(rule.Path, ""); err != nil {
				return nil, fmt.Errorf("cache control: rule %d: %w", i, err)
			}
		}
		rule.ContentType = strings.ToLower(rule.ContentType)
		rules[i] = rule
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cacheControlWriter{
				ResponseWriter: w,
				rules:          rules,
				name:           path.Base(r.URL.Path),
			}, r)
		})
	}, nil
}

type cacheControlWriter struct {
	http.ResponseWriter
	rules       []CacheControlRule
	name        string
	wroteHeader bool
}

func (cw *cacheControlWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	if code < http.StatusBadRequest && h.Get("Cache-Control") == "" {
		if value := cw.match(h.Get("Content-Type")); value != "" {
			h.Set("Cache-Control", value)
		}
	}

	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheControlWriter) match(contentType string) string {
	ct := strings.ToLower(contentType)
	for _, rule := range cw.rules {
		if rule.Path != "" {
			if ok, _ := path.Match(rule.Path, cw.name); !ok {
				continue
			}
		}
		if rule.ContentType != "" && !strings.HasPrefix(ct, rule.ContentType) {
			continue
		}
		return rule.Value
	}
	return ""
}

func (cw *cacheControlWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter.
func (cw *cacheControlWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
