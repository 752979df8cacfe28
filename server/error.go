package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/pkg"
	"github.com/ardnew/fxyaml/tree"
)

// Predefined errors (sentinel values).
var (
	ErrDecodeRequest   = pkg.NewError("malformed request")
	ErrRequestTooLarge = pkg.NewError("request body too large")
	ErrInternal        = pkg.NewError("internal error")
	ErrListen          = pkg.NewError("failed to listen")
	ErrServe           = pkg.NewError("server failed")
)

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("trailing data after request")
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Formula   *formula.Entry `json:"formula,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrDecodeRequest),
		errors.Is(err, calc.ErrContext),
		errors.Is(err, tree.ErrParse),
		errors.Is(err, calc.ErrEvaluate):
		return http.StatusBadRequest
	case errors.Is(err, calc.ErrCanceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as an [ErrorResponse].
// Internal errors are reported to the client without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := StatusOf(err)

	resp := ErrorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(ctx),
	}

	var f *calc.Failure
	if errors.As(err, &f) {
		resp.Formula = &f.Formula
	}

	logger := log.FromContext(ctx)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", slog.Any("error", err), slog.Int("status", status))

		resp.Error = ErrInternal.Message()
	} else {
		logger.WarnContext(ctx, "request rejected", slog.Any("error", err), slog.Int("status", status))
	}

	writeJSON(w, r, status, resp)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		ctx := r.Context()
		log.FromContext(ctx).ErrorContext(ctx, "encode response", slog.Any("error", err))

		status = http.StatusInternalServerError
		b, _ = json.Marshal(ErrorResponse{
			Error:     ErrInternal.Message(),
			RequestID: middleware.GetReqID(ctx),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
