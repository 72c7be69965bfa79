package middleware

import (
	"net/http"
	"strings"
	"time"

	"pixsort/internal/logging"
)

// responseWriter captures the status code and bytes written
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Logger logs every request at debug level and failed ones (status 400
// and up) as warnings.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		method := sanitizeLogField(r.Method)
		path := sanitizeLogField(r.URL.Path)
		remote := sanitizeLogField(r.RemoteAddr)

		if wrapped.statusCode >= http.StatusBadRequest {
			logging.Warn("metrics: %s %s from %s -> %d in %v", method, path, remote, wrapped.statusCode, duration.Round(time.Microsecond))
			return
		}
		logging.Debug("metrics: %s %s from %s -> %d, %d bytes in %v",
			method, path, remote, wrapped.statusCode, wrapped.bytesWritten, duration.Round(time.Microsecond))
	})
}

// sanitizeLogField strips control characters so a request cannot forge
// log lines or emit terminal escapes.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\x1b', r == '\x00':
			continue
		case r < 0x20 && r != '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
