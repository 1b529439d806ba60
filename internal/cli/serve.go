package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/vitalvas/swaggerpage"
	"github.com/vitalvas/swaggerpage/internal/config"
	"github.com/vitalvas/swaggerpage/mux"
	"github.com/vitalvas/swaggerpage/muxhandlers"
	"github.com/vitalvas/swaggerpage/swagger"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation page",
		Long: "Serve the Swagger 2.0 document at {path}/swagger.json and the swagger-ui " +
			"viewer under {path}, behind request ID, access log, metrics, security header, " +
			"cache control, compression and recovery middleware.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, version)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "Listen address (default :8080)")
	flags.Bool("h2c", false, "Serve cleartext HTTP/2")
	flags.Bool("validate", false, "Validate the document before serving")
	flags.String("title", "", "API title")
	flags.String("api-version", "", "API version")
	flags.String("path", "", "Public path of the page (default /docs)")
	flags.String("host", "", "API host")
	flags.StringSlice("apis", nil, "Glob patterns of annotated sources")
	flags.String("asset-dir", "", "swagger-ui-dist directory")
	flags.Bool("metrics", true, "Expose Prometheus metrics")

	return cmd
}

// newHandler builds the router with the middleware stack, the metrics
// endpoint and the documentation page.
func newHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	router := mux.NewRouter()

	proxy, err := muxhandlers.ProxyHeadersMiddleware(muxhandlers.ProxyHeadersConfig{
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: http.trusted_proxies: %w", config.ErrInvalid, err)
	}

	router.Use(
		proxy,
		muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
			GenerateFunc: muxhandlers.GeneratorByName(cfg.HTTP.RequestID),
		}),
		muxhandlers.LoggingMiddleware(muxhandlers.LoggingConfig{Logger: logger}),
	)

	if cfg.Metrics.Enabled {
		router.Use(muxhandlers.MetricsMiddleware(muxhandlers.MetricsConfig{
			Registerer: reg,
			Namespace:  cfg.Metrics.Namespace,
		}))
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	if err := useResponseMiddleware(router, cfg); err != nil {
		return nil, err
	}

	router.Use(muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: logger}))

	opts := cfg.PageOptions(router, logger)
	if cfg.Validate {
		opts.CheckDocument = func(doc *swagger.Document) error {
			return doc.Validate(ctx)
		}
	}

	if err := swaggerpage.CreatePage(opts); err != nil {
		return nil, err
	}

	if cfg.H2C {
		return h2c.NewHandler(router, &http2.Server{}), nil
	}
	return router, nil
}

// useResponseMiddleware adds the enabled http.security_headers, http.cache
// and http.compression middleware, in that order.
func useResponseMiddleware(router *mux.Router, cfg *config.Config) error {
	if sh := cfg.HTTP.SecurityHeaders; sh.Enabled {
		mw, err := muxhandlers.SecurityHeadersMiddleware(muxhandlers.SecurityHeadersConfig{
			FrameOption:           sh.FrameOption,
			ReferrerPolicy:        sh.ReferrerPolicy,
			HSTSMaxAge:            sh.HSTSMaxAge,
			ContentSecurityPolicy: sh.ContentSecurityPolicy,
		})
		if err != nil {
			return fmt.Errorf("%w: http.security_headers: %w", config.ErrInvalid, err)
		}
		router.Use(mw)
	}

	if cfg.HTTP.Cache.Enabled {
		rules := muxhandlers.DocsCacheRules(cfg.HTTP.Cache.MaxAge)
		if cfg.Metrics.Enabled {
			rules = append([]muxhandlers.CacheControlRule{
				{Path: path.Base(cfg.Metrics.Path), Value: "no-store"},
			}, rules...)
		}

		mw, err := muxhandlers.CacheControlMiddleware(muxhandlers.CacheControlConfig{Rules: rules})
		if err != nil {
			return fmt.Errorf("%w: http.cache: %w", config.ErrInvalid, err)
		}
		router.Use(mw)
	}

	if c := cfg.HTTP.Compression; c.Enabled {
		mw, err := muxhandlers.CompressionMiddleware(muxhandlers.CompressionConfig{
			Level:     c.Level,
			MinLength: c.MinLength,
		})
		if err != nil {
			return fmt.Errorf("%w: http.compression: %w", config.ErrInvalid, err)
		}
		router.Use(mw)
	}

	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := newHandler(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}

	return serve(ctx, ln, handler, logger)
}

// serve runs the server on ln until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
