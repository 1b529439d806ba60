package swaggerpage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// assetResolver serves files of the viewer bundle below root.
type assetResolver struct {
	root        string // absolute, with a trailing separator
	publicPath  string
	forceSecure bool
	config      []string // pre-rendered viewer settings

	readFile    func(string) ([]byte, error)
	contentType func(string) string
}

// resolveAssetRoot returns the absolute form of dir with a trailing separator.
func resolveAssetRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ConfigError{Field: "assetDir", Reason: fmt.Sprintf("cannot be resolved: %v", err)}
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", &ConfigError{Field: "assetDir", Reason: fmt.Sprintf("%q is not a directory", abs)}
	}

	if !strings.HasSuffix(abs, string(filepath.Separator)) {
		abs += string(filepath.Separator)
	}
	return abs, nil
}

// serve returns the content and content type of file. A file resolving
// outside root is rejected before any read.
func (a *assetResolver) serve(file string, r *http.Request) ([]byte, string, error) {
	filePath := filepath.Join(a.root, file)
	if !strings.HasPrefix(filePath, a.root) {
		return nil, "", &NotFoundError{File: file}
	}

	content, err := a.readFile(filePath)
	if err != nil {
		return nil, "", &NotFoundError{File: file, Cause: err}
	}

	if configPages[file] {
		page := rewriteSpecURL(string(content), a.specURL(r))
		content = []byte(injectConfig(page, a.config))
	}

	return content, a.contentType(file), nil
}

// specURL is the absolute URL of the document as seen by the client.
func (a *assetResolver) specURL(r *http.Request) string {
	scheme := "http"
	if a.forceSecure || isSecure(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + a.publicPath + "/swagger.json"
}

// isSecure reports whether r arrived over TLS, directly or, once the proxy
// headers middleware has run, at the proxy.
func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.URL.Scheme == "https"
}
