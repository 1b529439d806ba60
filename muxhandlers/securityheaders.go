package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vitalvas/swaggerpage/mux"
)

// ErrInvalidFrameOption is returned when SecurityHeadersConfig.FrameOption is
// not "DENY", "SAMEORIGIN" or empty.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig configures the Security Headers middleware behaviour.
type SecurityHeadersConfig struct {
	// FrameOption is the X-Frame-Options value. Defaults to "DENY".
	FrameOption string

	// ReferrerPolicy defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds. The
	// header is only sent on secure requests and only when positive.
	HSTSMaxAge int

	HSTSIncludeSubDomains bool

	// ContentSecurityPolicy is sent when non-empty. The swagger-ui entry
	// page runs an inline bootstrap script, so a policy must allow it.
	ContentSecurityPolicy string
}

// SecurityHeadersMiddleware returns a middleware that sets
// X-Content-Type-Options, X-Frame-Options and Referrer-Policy on every
// response, plus Strict-Transport-Security and Content-Security-Policy when
// configured.
//
// It returns ErrInvalidFrameOption for an unknown FrameOption.
func SecurityHeadersMiddleware(cfg SecurityHeadersConfig) (mux.MiddlewareFunc, error) {
	frame := cfg.FrameOption
	switch frame {
	case "":
		frame = "DENY"
	case "DENY", "SAMEORIGIN":
	default:
		return nil, ErrInvalidFrameOption
	}

	referrer := cfg.ReferrerPolicy
	if referrer == "" {
		referrer = "strict-origin-when-cross-origin"
	}

	static := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", frame},
		{"Referrer-Policy", referrer},
	}
	if cfg.ContentSecurityPolicy != "" {
		static = append(static, [2]string{"Content-Security-Policy", cfg.ContentSecurityPolicy})
	}

	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range static {
				h.Set(kv[0], kv[1])
			}
			if hsts != "" && (r.TLS != nil || r.URL.Scheme == "https") {
				h.Set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
