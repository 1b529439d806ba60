package swaggerpage

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitalvas/swaggerpage/mux"
)

// page holds the state shared by the three routes. It is read-only once
// CreatePage returns.
type page struct {
	publicPath   string
	spec         []byte
	assets       *assetResolver
	errorHandler ErrorHandlerFunc
	logger       *slog.Logger
}

// CreatePage builds the document and registers the documentation routes on
// opts.Server. Nothing is registered when it returns an error.
func CreatePage(opts PageOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	opts = opts.withDefaults()

	doc, err := buildSpec(opts)
	if err != nil {
		return err
	}

	if opts.CheckDocument != nil {
		if err := opts.CheckDocument(doc); err != nil {
			return fmt.Errorf("check document: %w", err)
		}
	}

	spec, err := doc.JSON()
	if err != nil {
		return err
	}

	root, err := resolveAssetRoot(opts.AssetDir)
	if err != nil {
		return err
	}

	config, err := configLines(opts.ValidatorURL, opts.SupportedSubmitMethods)
	if err != nil {
		return err
	}

	publicPath := strings.TrimRight(opts.Path, "/")

	p := &page{
		publicPath: publicPath,
		spec:       spec,
		assets: &assetResolver{
			root:        root,
			publicPath:  publicPath,
			forceSecure: opts.ForceSecure,
			config:      config,
			readFile:    opts.ReadFile,
			contentType: opts.LookupContentType,
		},
		errorHandler: opts.ErrorHandler,
		logger:       opts.Logger,
	}

	registerRoutes(opts.Server, p)

	opts.Logger.Info("swagger page mounted",
		"path", p.mountPath(),
		"assets", root,
		"paths", len(doc.Paths),
	)

	return nil
}

// registerRoutes adds the document, redirect and asset routes in that
// order, so the fixed routes take precedence over the asset wildcard.
func registerRoutes(server *mux.Router, p *page) {
	server.HandleFunc(p.publicPath+"/swagger.json", p.serveSpec).Methods(http.MethodGet)
	server.HandleFunc(p.mountPath(), p.serveRedirect).Methods(http.MethodGet)
	server.HandleFunc(p.publicPath+"/{file:.*}", p.serveAsset).Methods(http.MethodGet)
}

// mountPath is the redirect route; an empty public path mounts at "/".
func (p *page) mountPath() string {
	if p.publicPath == "" {
		return "/"
	}
	return p.publicPath
}

func (p *page) serveSpec(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseRaw(w, http.StatusOK, "application/json", p.spec)
}

func (p *page) serveRedirect(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Location", p.publicPath+"/index.html")
	w.WriteHeader(http.StatusFound)
}

func (p *page) serveAsset(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]

	body, contentType, err := p.assets.serve(file, r)
	if err != nil {
		p.logger.Debug("swagger asset not served", "file", file, "error", err)
		p.errorHandler(w, r, err)
		return
	}

	mux.ResponseRaw(w, http.StatusOK, contentType, body)
}
