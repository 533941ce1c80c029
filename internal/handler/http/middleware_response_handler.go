package http

import "net/http"

// responseWriter wraps [http.ResponseWriter] so the logging middleware can
// report the status code and body size after the handler returns. The first
// WriteHeader call wins; later calls are ignored, matching the contract of
// the standard library writer.
type responseWriter struct {
	http.ResponseWriter

	status      int
	size        int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write forwards to the wrapped writer and keeps a running byte total.
// A Write before any WriteHeader records the implicit 200.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
