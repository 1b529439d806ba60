// Package muxhandlers provides HTTP middleware for the mux router that the
// documentation server stacks in front of the swagger page routes.
//
// # Proxy Headers Middleware
//
// ProxyHeadersMiddleware populates r.RemoteAddr, r.URL.Scheme and r.Host from
// X-Forwarded-* headers when the peer is a trusted proxy. The rewritten
// scheme is what makes the page advertise an https spec URL behind a TLS
// terminating proxy. When TrustedProxies is empty, DefaultTrustedProxies is
// used.
//
//	mw, err := muxhandlers.ProxyHeadersMiddleware(muxhandlers.ProxyHeadersConfig{
//	    TrustedProxies: []string{"10.0.0.0/8"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Use(mw)
//
// # Request ID, Logging, Metrics and Recovery
//
// RequestIDMiddleware tags each request with a UUID v4, UUID v7 or ULID.
// LoggingMiddleware and RecoveryMiddleware write slog records carrying that
// ID. MetricsMiddleware exports Prometheus counters and histograms labelled
// by the matched route template.
//
// # Response Headers and Compression
//
// SecurityHeadersMiddleware sets browser hardening headers.
// CacheControlMiddleware applies the first matching CacheControlRule;
// DocsCacheRules keeps swagger.json and the viewer entry pages revalidated
// while the rest of the bundle is cached. CompressionMiddleware gzips or
// deflates bodies of at least MinLength bytes.
//
//	cc, err := muxhandlers.CacheControlMiddleware(muxhandlers.CacheControlConfig{
//	    Rules: muxhandlers.DocsCacheRules(24 * time.Hour),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Use(cc)
package muxhandlers
