package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ardnew/fxyaml/log"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds a client-supplied request ID.
const maxRequestIDLen = 128

// requestID assigns each request an ID, echoes it in the response, and
// stores a logger carrying it in the request context. A client-supplied ID
// is reused if it is not too long.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With(slog.String("request_id", id))

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		ctx = log.IntoContext(ctx, logger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logger.DebugContext(ctx, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// recoverer turns a panic in a handler into a logged 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := r.Context()
			log.FromContext(ctx).ErrorContext(ctx, "panic",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)

			writeErrorStatus(w, r, http.StatusInternalServerError, ErrInternal.Message())
		}()

		next.ServeHTTP(w, r)
	})
}
