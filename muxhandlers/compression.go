package muxhandlers

import (
	"compress/flate"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/vitalvas/swaggerpage/mux"
)

// ErrInvalidCompressionLevel is returned when CompressionConfig.Level is
// outside the valid compression level range.
var ErrInvalidCompressionLevel = errors.New("compression: invalid compression level")

// CompressionConfig configures the Compression middleware behaviour.
type CompressionConfig struct {
	// Level applies to both gzip and deflate. Zero selects
	// flate.DefaultCompression. Otherwise it must be in
	// [flate.HuffmanOnly, flate.BestCompression].
	Level int

	// MinLength is the smallest body, in bytes, that is compressed. Smaller
	// bodies are sent as is. Zero compresses every non-empty body.
	MinLength int
}

type compressor interface {
	io.WriteCloser
	Flush() error
	Reset(w io.Writer)
}

// encoder pairs a Content-Encoding token with a pool of its writers.
type encoder struct {
	name string
	pool sync.Pool
}

// CompressionMiddleware returns a middleware that gzip- or
// deflate-compresses response bodies the client accepts, preferring gzip.
// Bodies that already carry a Content-Encoding, media types that are
// compressed by nature, HEAD requests and responses without a body are left
// untouched.
//
// It returns ErrInvalidCompressionLevel if Level is outside the valid range.
func CompressionMiddleware(cfg CompressionConfig) (mux.MiddlewareFunc, error) {
	level := cfg.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, ErrInvalidCompressionLevel
	}

	gz := &encoder{name: "gzip"}
	gz.pool.New = func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}

	fl := &encoder{name: "deflate"}
	fl.pool.New = func() any {
		w, _ := flate.NewWriter(io.Discard, level)
		return w
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var enc *encoder
			switch negotiateEncoding(r.Header.Get("Accept-Encoding")) {
			case "gzip":
				enc = gz
			case "deflate":
				enc = fl
			}

			if enc == nil || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{ResponseWriter: w, enc: enc, minLength: cfg.MinLength}
			defer cw.close()

			next.ServeHTTP(cw, r)
		})
	}, nil
}

// negotiateEncoding picks "gzip", "deflate" or "" from an Accept-Encoding
// header. A "*" entry covers codings not listed explicitly, and gzip wins
// ties.
func negotiateEncoding(header string) string {
	q := map[string]float64{}
	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		q[name] = qualityOf(params)
	}

	weight := func(name string) float64 {
		if v, ok := q[name]; ok {
			return v
		}
		if v, ok := q["*"]; ok {
			return v
		}
		return 0
	}

	gzipQ, deflateQ := weight("gzip"), weight("deflate")
	switch {
	case gzipQ > 0 && gzipQ >= deflateQ:
		return "gzip"
	case deflateQ > 0:
		return "deflate"
	}
	return ""
}

// qualityOf returns the q parameter of an Accept-Encoding entry, 1 when
// absent and 0 when malformed.
func qualityOf(params string) float64 {
	key, val, ok := strings.Cut(strings.TrimSpace(params), "=")
	if !ok || strings.TrimSpace(key) != "q" {
		return 1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0
	}
	return v
}

// precompressedTypes are media type prefixes not worth compressing again.
var precompressedTypes = []string{
	"image/",
	"video/",
	"audio/",
	"font/woff",
	"application/zip",
	"application/gzip",
	"application/x-gzip",
	"application/zstd",
	"application/wasm",
}

func isPrecompressed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, prefix := range precompressedTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func bodyAllowed(status int) bool {
	return status >= http.StatusOK && status != http.StatusNoContent && status != http.StatusNotModified
}

// compressWriter holds the status and the first MinLength bytes back until
// it can decide whether to compress.
type compressWriter struct {
	http.ResponseWriter
	enc       *encoder
	minLength int

	status  int
	buf     []byte
	started bool
	zw      compressor
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.status != 0 {
		return
	}
	cw.status = code
	if !bodyAllowed(code) {
		cw.start(false)
	}
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.WriteHeader(http.StatusOK)
	}

	if cw.started {
		if cw.zw != nil {
			return cw.zw.Write(b)
		}
		return cw.ResponseWriter.Write(b)
	}

	cw.buf = append(cw.buf, b...)
	if len(cw.buf) > 0 && len(cw.buf) >= cw.minLength {
		cw.start(cw.compressible())
		if err := cw.flushBuffer(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func (cw *compressWriter) compressible() bool {
	h := cw.Header()
	return bodyAllowed(cw.status) &&
		h.Get("Content-Encoding") == "" &&
		!isPrecompressed(h.Get("Content-Type"))
}

// start sends the headers, switching to the compressed stream when
// compress is set.
func (cw *compressWriter) start(compress bool) {
	cw.started = true

	if compress {
		h := cw.Header()
		h.Set("Content-Encoding", cw.enc.name)
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")

		cw.zw = cw.enc.pool.Get().(compressor)
		cw.zw.Reset(cw.ResponseWriter)
	}

	cw.ResponseWriter.WriteHeader(cw.status)
}

func (cw *compressWriter) flushBuffer() error {
	if len(cw.buf) == 0 {
		return nil
	}
	var err error
	if cw.zw != nil {
		_, err = cw.zw.Write(cw.buf)
	} else {
		_, err = cw.ResponseWriter.Write(cw.buf)
	}
	cw.buf = nil
	return err
}

// close sends a body that stayed below MinLength uncompressed and
// returns the compressor to its pool.
func (cw *compressWriter) close() {
	if !cw.started && (cw.status != 0 || len(cw.buf) > 0) {
		if cw.status == 0 {
			cw.status = http.StatusOK
		}
		cw.start(false)
		_ = cw.flushBuffer()
	}

	if cw.zw != nil {
		_ = cw.zw.Close()
		cw.enc.pool.Put(cw.zw)
		cw.zw = nil
	}
}

// Flush implements http.Flusher. It forces the compression decision for
// whatever has been buffered so far.
func (cw *compressWriter) Flush() {
	if !cw.started {
		if cw.status == 0 {
			cw.status = http.StatusOK
		}
		cw.start(len(cw.buf) > 0 && cw.compressible())
		_ = cw.flushBuffer()
	}

	if cw.zw != nil {
		_ = cw.zw.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter.
func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
