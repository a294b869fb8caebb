package server

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

// responseHeaders is attached to every response the server sends.
var responseHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Cache-Control", "no-cache, no-store, must-revalidate"},
}

// headerWriter sets responseHeaders when the status line is written.
// http.FileServer clears Cache-Control on its error path, so setting the
// headers before calling it is not enough.
type headerWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(code int) {
	if !w.wroteHeader && code >= 200 {
		w.wroteHeader = true
		h := w.Header()
		for _, kv := range responseHeaders {
			h.Set(kv[0], kv[1])
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hw := &headerWriter{ResponseWriter: w}
		next.ServeHTTP(hw, r)
		if !hw.wroteHeader {
			hw.WriteHeader(http.StatusOK)
		}
	})
}

// preflight answers OPTIONS on any path with an empty 200.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func compressHandler(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// statusWriter captures the status code and body size for the access log.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.statusCode == 0 && code >= 200 {
		w.statusCode = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// logRequests writes one line per request:
//
//	[127.0.0.1] "GET /style.css HTTP/1.1" 200 42
func logRequests(l *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		size := "-"
		if sw.size > 0 {
			size = fmt.Sprint(sw.size)
		}
		l.Info(fmt.Sprintf("[%s] \"%s\" %d %s", clientHost(r.RemoteAddr), requestLine(r), status, size))
	})
}
