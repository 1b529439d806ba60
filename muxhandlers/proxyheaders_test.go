package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/swaggerpage/mux"
)

func TestProxyHeadersMiddleware(t *testing.T) {
	t.Run("config validation", func(t *testing.T) {
		tests := []struct {
			name    string
			entries []string
		}{
			{"invalid IP entry", []string{"not-an-ip"}},
			{"invalid CIDR entry", []string{"10.0.0.0/99"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ProxyHeadersMiddleware(ProxyHeadersConfig{TrustedProxies: tt.entries})
				assert.ErrorIs(t, err, ErrInvalidProxy)
			})
		}

		t.Run("valid IPs and CIDRs accepted", func(t *testing.T) {
			_, err := ProxyHeadersMiddleware(ProxyHeadersConfig{
				TrustedProxies: []string{"10.0.0.1", "192.168.0.0/16", "::1", "fd00::/8"},
			})
			assert.NoError(t, err)
		})
	})

	tests := []struct {
		name       string
		config     ProxyHeadersConfig
		remoteAddr string
		headers    map[string]string
		wantAddr   string
		wantScheme string
		wantHost   string
	}{
		{
			name:       "private peer trusted by default",
			remoteAddr: "10.0.0.1:8080",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			wantAddr:   "203.0.113.50",
			wantHost:   "example.com",
		},
		{
			name:       "public peer ignored",
			remoteAddr: "203.0.113.9:8080",
			headers: map[string]string{
				"X-Forwarded-For":   "198.51.100.1",
				"X-Forwarded-Proto": "https",
				"X-Forwarded-Host":  "evil.example",
			},
			wantAddr: "203.0.113.9:8080",
			wantHost: "example.com",
		},
		{
			name:       "scheme and host",
			remoteAddr: "127.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-Proto": "HTTPS",
				"X-Forwarded-Host":  "docs.example.com",
			},
			wantAddr:   "127.0.0.1:1234",
			wantScheme: "https",
			wantHost:   "docs.example.com",
		},
		{
			name:       "scheme fallback header",
			remoteAddr: "127.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-Scheme": "https"},
			wantAddr:   "127.0.0.1:1234",
			wantScheme: "https",
			wantHost:   "example.com",
		},
		{
			name:       "unknown scheme ignored",
			remoteAddr: "127.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-Proto": "gopher"},
			wantAddr:   "127.0.0.1:1234",
			wantHost:   "example.com",
		},
		{
			name:       "real ip",
			remoteAddr: "[::1]:1234",
			headers:    map[string]string{"X-Real-IP": "2001:db8::1"},
			wantAddr:   "2001:db8::1",
			wantHost:   "example.com",
		},
		{
			name:       "explicit single proxy",
			config:     ProxyHeadersConfig{TrustedProxies: []string{"203.0.113.9"}},
			remoteAddr: "203.0.113.9:80",
			headers:    map[string]string{"X-Forwarded-For": "garbage, 198.51.100.7"},
			wantAddr:   "198.51.100.7",
			wantHost:   "example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := ProxyHeadersMiddleware(tt.config)
			require.NoError(t, err)

			var got *http.Request
			r := mux.NewRouter()
			r.HandleFunc("/", func(_ http.ResponseWriter, req *http.Request) {
				got = req
			})
			r.Use(mw)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = "example.com"
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			r.ServeHTTP(httptest.NewRecorder(), req)
			require.NotNil(t, got)

			assert.Equal(t, tt.wantAddr, got.RemoteAddr)
			assert.Equal(t, tt.wantScheme, got.URL.Scheme)
			assert.Equal(t, tt.wantHost, got.Host)
		})
	}
}

func TestIsTrustedPeer(t *testing.T) {
	trusted, err := parseTrustedProxies([]string{"10.0.0.0/8", "::1"})
	require.NoError(t, err)

	assert.True(t, isTrustedPeer("10.1.2.3:80", trusted))
	assert.True(t, isTrustedPeer("10.1.2.3", trusted))
	assert.True(t, isTrustedPeer("[::1]:80", trusted))
	assert.True(t, isTrustedPeer("[::ffff:10.0.0.1]:80", trusted))
	assert.False(t, isTrustedPeer("11.0.0.1:80", trusted))
	assert.False(t, isTrustedPeer("not-an-addr", trusted))
}
