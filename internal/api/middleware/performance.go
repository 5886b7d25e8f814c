package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Responses smaller than this are not worth compressing
const minCompressBytes = 512

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return gz
	},
}

// Compression gzips response bodies for clients that accept it. The body is
// buffered so empty and tiny payloads go out untouched.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		if r.Method == http.MethodHead || !acceptsGzip(r) {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedResponse{ResponseWriter: w, body: &bytes.Buffer{}}
		next.ServeHTTP(buf, r)

		if buf.body.Len() < minCompressBytes || w.Header().Get("Content-Encoding") != "" {
			buf.flushTo(w, buf.body.Bytes())
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)

		var compressed bytes.Buffer
		gz.Reset(&compressed)
		_, _ = gz.Write(buf.body.Bytes())
		_ = gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		buf.flushTo(w, compressed.Bytes())
	})
}

func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "gzip") {
			return true
		}
	}
	return false
}

// ETag answers conditional GETs with 304 when the body hash matches.
// Tags are weak because compression may change the bytes on the wire.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedResponse{ResponseWriter: w, body: &bytes.Buffer{}}
		next.ServeHTTP(buf, r)

		if buf.status() != http.StatusOK {
			buf.flushTo(w, buf.body.Bytes())
			return
		}

		hash := sha256.Sum256(buf.body.Bytes())
		etag := `W/"` + hex.EncodeToString(hash[:16]) + `"`
		w.Header().Set("ETag", etag)

		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		buf.flushTo(w, buf.body.Bytes())
	})
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}

// bufferedResponse holds the status and body until the middleware decides
// how to send them
type bufferedResponse struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(statusCode int) {
	if b.statusCode == 0 {
		b.statusCode = statusCode
	}
}

func (b *bufferedResponse) status() int {
	if b.statusCode == 0 {
		return http.StatusOK
	}
	return b.statusCode
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter, body []byte) {
	w.WriteHeader(b.status())
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// CacheControl marks responses as private: apart from reference data every
// payload depends on the caller's session
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case path == "/api/categories":
			w.Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasPrefix(path, "/api/admin/"):
			w.Header().Set("Cache-Control", "no-store")
		default:
			w.Header().Set("Cache-Control", "private, no-cache, must-revalidate")
		}

		next.ServeHTTP(w, r)
	})
}

// ResponseOptimization combines cache headers, conditional GETs and compression
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(ETag(Compression(next)))
}
