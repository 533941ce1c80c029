package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/linkdeck/linkdeck/internal/app"
)

// Snapshots gzip well, so both directions are transparently coded here:
// gzip-encoded request bodies are inflated before the handlers see them,
// and responses are deflated for clients that advertise gzip support.
// Writers and readers are pooled since every agent sync round trips
// through these endpoints.

var (
	gzipWriterPool = sync.Pool{New: func() any { return gzip.NewWriter(nil) }}
	gzipReaderPool = sync.Pool{New: func() any { return new(gzip.Reader) }}
)

func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if hasGzipBody(req) {
			ok := inflateRequestBody(w, req)
			if !ok {
				return
			}
		}

		if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, req)
			return
		}

		zw := gzipWriterPool.Get().(*gzip.Writer)
		zw.Reset(w)

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gzipWriter: zw}, req)

		zw.Close()
		gzipWriterPool.Put(zw)
	})
}

func hasGzipBody(req *http.Request) bool {
	return req.Body != nil && strings.Contains(req.Header.Get("Content-Encoding"), "gzip")
}

// inflateRequestBody swaps the request body for a pooled gzip reader.
// On malformed input it writes a 400 and reports false.
func inflateRequestBody(w http.ResponseWriter, req *http.Request) bool {
	zr := gzipReaderPool.Get().(*gzip.Reader)
	if err := zr.Reset(req.Body); err != nil {
		gzipReaderPool.Put(zr)
		http.Error(w, app.MsgInvalidGzipData, http.StatusBadRequest)
		return false
	}

	req.Body = &wrappedReadCloser{
		Reader: zr,
		OnClose: func() {
			zr.Close()
			gzipReaderPool.Put(zr)
		},
	}
	req.Header.Del("Content-Encoding")
	return true
}

// wrappedReadCloser lets a pooled reader return to its pool when the
// request body is closed.
type wrappedReadCloser struct {
	io.Reader
	OnClose func()
}

func (w *wrappedReadCloser) Close() error {
	if w.OnClose != nil {
		w.OnClose()
	}
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gzipWriter *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Set("Content-Encoding", "gzip")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzipWriter.Write(data)
}

func (w *gzipResponseWriter) Close() error {
	return w.gzipWriter.Close()
}
