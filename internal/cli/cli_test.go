package cli

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/swaggerpage"
	"github.com/vitalvas/swaggerpage/internal/config"
	"github.com/vitalvas/swaggerpage/swagger"
)

const indexHTML = `<script>
      const ui = SwaggerUIBundle({
        url: "https://petstore.swagger.io/v2/swagger.json",
        dom_id: '#swagger-ui',
        layout: "StandaloneLayout"
      });
</script>`

const routesSource = `package routes

/**
 * @swagger
 * /pets:
 *   get:
 *     summary: List pets
 *     responses:
 *       200:
 *         description: OK
 */
func ListPets() {}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetArgs(append(args, "--env-file", writeFile(t, t.TempDir(), ".env", "")))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "routes.go", routesSource)
	apis := filepath.Join(dir, "*.go")

	t.Run("json", func(t *testing.T) {
		out, err := runCmd(t, "generate", "--title", "Pets", "--api-version", "1.0.0", "--apis", apis)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "2.0", doc["swagger"])
		assert.Equal(t, map[string]any{"title": "Pets", "version": "1.0.0"}, doc["info"])
		assert.Contains(t, doc["paths"], "/pets")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runCmd(t, "generate", "--title", "Pets", "--api-version", "1.0.0", "--apis", apis, "--format", "yaml")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "2.0", doc["swagger"])
		assert.Contains(t, doc["paths"], "/pets")
	})

	t.Run("validate", func(t *testing.T) {
		_, err := runCmd(t, "generate", "--title", "Pets", "--api-version", "1.0.0", "--apis", apis, "--validate")
		require.NoError(t, err)
	})

	t.Run("output file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "swagger.json")
		out, err := runCmd(t, "generate", "--title", "Pets", "--api-version", "1.0.0", "-o", target)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"title":"Pets"`)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := runCmd(t, "generate", "--api-version", "1.0.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, swaggerpage.ErrInvalidConfig)
		assert.EqualError(t, err, "options.title is required")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := runCmd(t, "generate", "--title", "Pets", "--api-version", "1.0.0", "--format", "xml")
		assert.ErrorIs(t, err, ErrUsage)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := runCmd(t, "generate", "--nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUsage)
		assert.Contains(t, err.Error(), "Usage:")
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	assets := t.TempDir()
	writeFile(t, assets, "index.html", indexHTML)
	writeFile(t, assets, "swagger-ui.css", "body{}")

	return &config.Config{
		Listen: "127.0.0.1:0",
		Page: config.PageConfig{
			Title:                  "Pets",
			Version:                "1.0.0",
			Path:                   "/docs",
			AssetDir:               assets,
			ValidatorURL:           config.ValidatorNone,
			SupportedSubmitMethods: []string{},
		},
		HTTP:    config.HTTPConfig{RequestID: "ulid"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "swaggerpage"},
	}
}

func TestNewHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("routes and middleware", func(t *testing.T) {
		handler, err := newHandler(context.Background(), testConfig(t), logger, prometheus.NewRegistry())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/swagger.json", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Len(t, w.Header().Get("X-Request-ID"), 26)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/docs/index.html", w.Header().Get("Location"))

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `url: "http://example.com/docs/swagger.json"`)
		assert.Contains(t, w.Body.String(), "validatorUrl: null")
		assert.Contains(t, w.Body.String(), "supportedSubmitMethods: []")

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/missing.js", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "File missing.js does not exist")

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `swaggerpage_http_requests_total{method="GET",route="/docs/swagger.json",status="200"} 1`)
	})

	t.Run("response middleware", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.HTTP.Compression = config.CompressionConfig{Enabled: true, MinLength: 1024}
		cfg.HTTP.Cache = config.CacheConfig{Enabled: true, MaxAge: time.Hour}
		cfg.HTTP.SecurityHeaders = config.SecurityHeadersConfig{Enabled: true, FrameOption: "DENY"}

		bundle := strings.Repeat("window.ui = SwaggerUIBundle;\n", 100)
		writeFile(t, cfg.Page.AssetDir, "swagger-ui-bundle.js", bundle)

		handler, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/docs/swagger-ui-bundle.js", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, bundle, string(plain))

		for _, target := range []string{"/docs/swagger.json", "/docs/index.html"} {
			w = httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusOK, w.Code, target)
			assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"), target)
			assert.Empty(t, w.Header().Get("Content-Encoding"), target)
		}

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/swagger-ui.css", nil))
		assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/missing.js", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("Cache-Control"))

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})

	t.Run("bad compression level", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.HTTP.Compression = config.CompressionConfig{Enabled: true, Level: 42}

		_, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("forwarded proto from trusted proxy", func(t *testing.T) {
		handler, err := newHandler(context.Background(), testConfig(t), logger, prometheus.NewRegistry())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/docs/index.html", nil)
		req.RemoteAddr = "10.1.2.3:4567"
		req.Header.Set("X-Forwarded-Proto", "https")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), `url: "https://example.com/docs/swagger.json"`)
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Metrics.Enabled = false

		handler, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("validate", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "routes.go", routesSource)

		cfg := testConfig(t)
		cfg.Validate = true
		cfg.Page.APIs = []string{filepath.Join(dir, "*.go")}

		_, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		require.NoError(t, err)
	})

	t.Run("validate rejects invalid document", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Validate = true
		cfg.Page.Definitions = map[string]any{"Broken": "bar"}

		_, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		require.Error(t, err)
		assert.ErrorIs(t, err, swagger.ErrInvalidDocument)
	})

	t.Run("invalid page options", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Page.Title = ""

		_, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		assert.ErrorIs(t, err, swaggerpage.ErrInvalidConfig)
	})

	t.Run("bad trusted proxy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.HTTP.TrustedProxies = []string{"not-an-ip"}

		_, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("h2c", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.H2C = true

		handler, err := newHandler(context.Background(), cfg, logger, prometheus.NewRegistry())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/swagger.json", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServe(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	handler, err := newHandler(context.Background(), testConfig(t), logger, prometheus.NewRegistry())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, handler, logger) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/docs/swagger.json")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var doc swagger.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Pets", doc.Info.Title)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestUsageError(t *testing.T) {
	err := newUsageError("bad flag")
	assert.ErrorIs(t, err, ErrUsage)
	assert.True(t, strings.Contains(err.Error(), "bad flag"))
}
