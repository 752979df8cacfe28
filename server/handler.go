package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/pkg"
)

// CalcRequest is the body of POST /calc.
type CalcRequest struct {
	Context json.RawMessage `json:"context,omitempty"`
	YAML    string          `json:"yaml"`
}

// EvalRequest is the body of POST /eval.
type EvalRequest struct {
	Context  json.RawMessage  `json:"context,omitempty"`
	Formulas []FormulaRequest `json:"formulas"`
}

// FormulaRequest is a single named formula in an [EvalRequest].
// Expression may carry a leading "=".
type FormulaRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Engine  string `json:"engine"`
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CalcRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)

		return
	}

	initial, err := calc.DecodeContext(req.Context)
	if err != nil {
		writeError(w, r, err)

		return
	}

	out, err := s.calc.Calculate(ctx, calc.Request{
		Context:  initial,
		Document: []byte(req.YAML),
	})
	if err != nil {
		writeError(w, r, err)

		return
	}

	log.FromContext(ctx).DebugContext(ctx, "successful response",
		slog.Int("outputs", out.Len()),
	)

	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EvalRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)

		return
	}

	for i, f := range req.Formulas {
		if f.Name == "" {
			writeError(w, r, ErrDecodeRequest.
				Wrap(fmt.Errorf("formulas[%d]: name is required", i)).
				With(slog.Int("index", i)))

			return
		}
	}

	initial, err := calc.DecodeContext(req.Context)
	if err != nil {
		writeError(w, r, err)

		return
	}

	entries := formula.FromPairs(formulaPairs(req.Formulas))

	out, err := s.calc.CalculateFormulas(ctx, entries, initial)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.calc.Functions())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: pkg.Version(),
		Engine:  s.calc.Engine(),
	})
}

func formulaPairs(fs []FormulaRequest) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range fs {
			if !yield(f.Name, f.Expression) {
				return
			}
		}
	}
}

// decodeJSON decodes exactly one JSON value from body into v.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrRequestTooLarge.Wrap(err).With(slog.Int64("limit", tooLarge.Limit))
		}

		if errors.Is(err, io.EOF) {
			return ErrDecodeRequest.Wrap(errEmptyBody)
		}

		return ErrDecodeRequest.Wrap(err)
	}

	if dec.More() {
		return ErrDecodeRequest.Wrap(errTrailingData)
	}

	return nil
}
