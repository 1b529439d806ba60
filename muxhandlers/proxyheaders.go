package muxhandlers

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/vitalvas/swaggerpage/mux"
)

// ErrInvalidProxy is returned when a TrustedProxies entry is neither a valid
// IP address nor a valid CIDR range.
var ErrInvalidProxy = errors.New("proxy headers: invalid proxy entry")

// DefaultTrustedProxies is used when ProxyHeadersConfig.TrustedProxies is
// empty: loopback, RFC 1918, CGNAT (RFC 6598) and IPv6 unique local ranges.
var DefaultTrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10",
	"::1/128",
	"fc00::/7",
}

// ProxyHeadersConfig configures the ProxyHeaders middleware behaviour.
type ProxyHeadersConfig struct {
	// TrustedProxies is a list of IP addresses and CIDR ranges.
	// Forwarding headers are only honoured when r.RemoteAddr is in this set.
	// When empty, DefaultTrustedProxies is used.
	TrustedProxies []string
}

// ProxyHeadersMiddleware returns a middleware that applies reverse proxy
// headers when the peer is a trusted proxy:
//   - r.RemoteAddr: leftmost valid IP of X-Forwarded-For, else X-Real-IP
//   - r.URL.Scheme: X-Forwarded-Proto, else X-Forwarded-Scheme (http or https)
//   - r.Host:       X-Forwarded-Host
//
// The documentation page builds its document URL from r.URL.Scheme and
// r.Host, so TLS terminated at the proxy yields an https URL.
func ProxyHeadersMiddleware(cfg ProxyHeadersConfig) (mux.MiddlewareFunc, error) {
	entries := cfg.TrustedProxies
	if len(entries) == 0 {
		entries = DefaultTrustedProxies
	}

	trusted, err := parseTrustedProxies(entries)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isTrustedPeer(r.RemoteAddr, trusted) {
				next.ServeHTTP(w, r)
				return
			}

			if ip := forwardedFor(r); ip != "" {
				r.RemoteAddr = ip
			}

			if scheme := proxyScheme(r); scheme != "" {
				u := *r.URL
				u.Scheme = scheme
				r.URL = &u
			}

			if host := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); host != "" {
				r.Host = host
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// forwardedFor returns the client IP from X-Forwarded-For or X-Real-IP.
func forwardedFor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for part := range strings.SplitSeq(xff, ",") {
			candidate := strings.TrimSpace(part)
			if _, err := netip.ParseAddr(candidate); err == nil {
				return candidate
			}
		}
		return ""
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if _, err := netip.ParseAddr(realIP); err == nil {
		return realIP
	}
	return ""
}

// proxyScheme returns the normalized scheme from X-Forwarded-Proto or
// X-Forwarded-Scheme, or "" when absent or not http/https.
func proxyScheme(r *http.Request) string {
	for _, header := range []string{"X-Forwarded-Proto", "X-Forwarded-Scheme"} {
		val := r.Header.Get(header)
		if val == "" {
			continue
		}
		switch normalized := strings.ToLower(strings.TrimSpace(val)); normalized {
		case "http", "https":
			return normalized
		}
		return ""
	}
	return ""
}

func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))

	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}

func isTrustedPeer(remoteAddr string, trusted []netip.Prefix) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr may be a bare IP without port.
		host = remoteAddr
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
