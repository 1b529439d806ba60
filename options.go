package swaggerpage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitalvas/swaggerpage/jsdoc"
	"github.com/vitalvas/swaggerpage/mux"
	"github.com/vitalvas/swaggerpage/swagger"
)

// DefaultAssetDir is where npm installs the swagger-ui-dist bundle.
const DefaultAssetDir = "node_modules/swagger-ui-dist"

// SubmitMethod is an HTTP method the viewer's "Try it out" feature may use.
type SubmitMethod string

const (
	SubmitGet     SubmitMethod = "get"
	SubmitPut     SubmitMethod = "put"
	SubmitPost    SubmitMethod = "post"
	SubmitDelete  SubmitMethod = "delete"
	SubmitOptions SubmitMethod = "options"
	SubmitHead    SubmitMethod = "head"
	SubmitPatch   SubmitMethod = "patch"
	SubmitTrace   SubmitMethod = "trace"
)

// Valid reports whether m is a method swagger-ui accepts.
func (m SubmitMethod) Valid() bool {
	switch m {
	case SubmitGet, SubmitPut, SubmitPost, SubmitDelete,
		SubmitOptions, SubmitHead, SubmitPatch, SubmitTrace:
		return true
	}
	return false
}

// ValidatorURL is the viewer's validatorUrl setting. A nil *ValidatorURL
// leaves the viewer default untouched.
type ValidatorURL struct {
	url      string
	disabled bool
}

// ValidatorDisabled turns the viewer's online validator off (validatorUrl: null).
func ValidatorDisabled() *ValidatorURL {
	return &ValidatorURL{disabled: true}
}

// ValidatorAt points the viewer's validator badge at u.
func ValidatorAt(u string) *ValidatorURL {
	return &ValidatorURL{url: u}
}

// Disabled reports whether the validator is turned off.
func (v *ValidatorURL) Disabled() bool { return v.disabled }

// URL returns the validator URL, empty when disabled.
func (v *ValidatorURL) URL() string { return v.url }

// MarshalJSON encodes a disabled validator as null and any other as a string.
func (v *ValidatorURL) MarshalJSON() ([]byte, error) {
	if v.disabled {
		return []byte("null"), nil
	}
	return encodeJSON(v.url)
}

// SpecExtractor builds the base document from the definition and the
// sources matched by apis.
type SpecExtractor interface {
	Extract(def swagger.Definition, apis []string) (*swagger.Document, error)
}

// ExtractorFunc adapts a function to SpecExtractor.
type ExtractorFunc func(def swagger.Definition, apis []string) (*swagger.Document, error)

// Extract calls f(def, apis).
func (f ExtractorFunc) Extract(def swagger.Definition, apis []string) (*swagger.Document, error) {
	return f(def, apis)
}

// PageOptions configures CreatePage and BuildSpec. Title, Version, Server
// and Path are required.
type PageOptions struct {
	Title   string
	Version string

	// Server is the router the routes are registered on.
	Server *mux.Router

	// Path is the public mount point; trailing slashes are stripped.
	Path string

	Description string

	// Tags defaults to an empty list.
	Tags []swagger.Tag

	// Host is written to the document with trailing slashes stripped.
	Host string

	// Schemes: nil omits the field, an empty slice serves "schemes": [].
	Schemes []swagger.Scheme

	// APIs are glob patterns of the annotated sources.
	APIs []string

	// Definitions are added to the document's definitions, replacing
	// extracted ones with the same name.
	Definitions map[string]any

	// SecurityDefinitions are merged into the document. A non-nil empty map
	// removes securityDefinitions from the document.
	SecurityDefinitions map[string]*swagger.SecurityDefinition

	// RoutePrefix sets basePath to "/" + RoutePrefix.
	RoutePrefix string

	// ForceSecure makes the viewer load the document over https even for
	// plain http requests.
	ForceSecure bool

	ValidatorURL *ValidatorURL

	// SupportedSubmitMethods: nil leaves the viewer default, a non-nil
	// slice (even empty) is injected.
	SupportedSubmitMethods []SubmitMethod

	// AssetDir is the swagger-ui-dist directory. Defaults to DefaultAssetDir.
	AssetDir string

	// Extractor defaults to jsdoc.New().
	Extractor SpecExtractor

	// CheckDocument, when set, is called by CreatePage with the built
	// document before any route is registered. A non-nil error aborts
	// setup.
	CheckDocument func(doc *swagger.Document) error

	// ErrorHandler reports asset errors. Defaults to DefaultErrorHandler.
	ErrorHandler ErrorHandlerFunc

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	// LookupContentType maps a file name to a MIME type, empty when unknown.
	// Defaults to mime.TypeByExtension on the file extension.
	LookupContentType func(name string) string
}

// Validate checks the required fields in the order title, version, server,
// path, then the path format and enum values.
func (o *PageOptions) Validate() error {
	switch {
	case o.Title == "":
		return &ConfigError{Field: "title"}
	case o.Version == "":
		return &ConfigError{Field: "version"}
	case o.Server == nil:
		return &ConfigError{Field: "server"}
	case o.Path == "":
		return &ConfigError{Field: "path"}
	}

	if !strings.HasPrefix(o.Path, "/") {
		return &ConfigError{Field: "path", Reason: "must start with /"}
	}
	if strings.ContainsAny(o.Path, "{}") {
		return &ConfigError{Field: "path", Reason: "must not contain braces"}
	}

	for _, s := range o.Schemes {
		if !s.Valid() {
			return &ConfigError{Field: "schemes", Reason: fmt.Sprintf("has unknown scheme %q", s)}
		}
	}

	for _, m := range o.SupportedSubmitMethods {
		if !m.Valid() {
			return &ConfigError{Field: "supportedSubmitMethods", Reason: fmt.Sprintf("has unknown method %q", m)}
		}
	}

	return nil
}

func (o PageOptions) withDefaults() PageOptions {
	if o.AssetDir == "" {
		o.AssetDir = DefaultAssetDir
	}
	if o.Extractor == nil {
		o.Extractor = jsdoc.New()
	}
	if o.ErrorHandler == nil {
		o.ErrorHandler = DefaultErrorHandler
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.ReadFile == nil {
		o.ReadFile = os.ReadFile
	}
	if o.LookupContentType == nil {
		o.LookupContentType = lookupContentType
	}
	return o
}

func lookupContentType(name string) string {
	return mime.TypeByExtension(filepath.Ext(name))
}

// encodeJSON encodes v without HTML escaping, so URLs keep their '&'.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
