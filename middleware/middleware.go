package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// loggingWriter wraps http.ResponseWriter to capture the status code
// and response size for the request log.
type loggingWriter struct {
	w            http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lw *loggingWriter) Header() http.Header {
	return lw.w.Header()
}

func (lw *loggingWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.w.WriteHeader(code)
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if lw.statusCode == 0 {
		lw.statusCode = http.StatusOK
	}
	n, err := lw.w.Write(b)
	lw.bytesWritten += int64(n)
	return n, err
}

// Unwrap exposes the underlying ResponseWriter so http.ResponseController
// can reach Hijacker during websocket upgrades.
func (lw *loggingWriter) Unwrap() http.ResponseWriter {
	return lw.w
}

// Logging writes one line per request: method, path, status, size,
// latency and remote address.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper, ok := w.(*loggingWriter)
		if !ok {
			wrapper = &loggingWriter{w: w}
		}

		next.ServeHTTP(wrapper, r)

		status := wrapper.statusCode
		if status == 0 {
			status = http.StatusOK
		}

		log.Printf("%s %s %d %dB %s %s",
			r.Method, r.URL.Path, status, wrapper.bytesWritten, time.Since(start), r.RemoteAddr)
	})
}

// Recovery turns a handler panic into a 500 response instead of a dead
// server. If headers already went out the connection is left as is.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapper, ok := w.(*loggingWriter)
		if !ok {
			wrapper = &loggingWriter{w: w}
		}

		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered on %s: %v", r.URL.Path, err)
				if wrapper.statusCode == 0 {
					wrapper.Header().Set("Content-Type", "application/json")
					wrapper.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(wrapper).Encode(types.ErrorResponse{Detail: types.MsgUnavailable})
				}
			}
		}()

		next.ServeHTTP(wrapper, r)
	})
}
