package blockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-fieldblocks/pkg/blocks"
	"github.com/goliatone/go-fieldblocks/pkg/engine"
	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// ScopeFactory starts request scopes. *engine.Engine satisfies it.
type ScopeFactory interface {
	NewScope(options ...engine.ScopeOption) *engine.Scope
}

type fetchRequest struct {
	Block   json.RawMessage `json:"block"`
	Query   engine.Query    `json:"query"`
	OwnerID string          `json:"owner_id"`
	Context map[string]any  `json:"context"`
}

type renderRequest struct {
	Block     json.RawMessage `json:"block"`
	InnerHTML string          `json:"inner_html"`
	IsEditing bool            `json:"is_editing"`
	OwnerID   string          `json:"owner_id"`
	Context   map[string]any  `json:"context"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// FetchHandler serves engine.Scope.Fetch as a JSON endpoint.
func FetchHandler(factory ScopeFactory, fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return handle(opts, func(w http.ResponseWriter, r *http.Request) error {
		var req fetchRequest
		desc, err := decode(w, r, opts, &req, func() json.RawMessage { return req.Block })
		if err != nil {
			return err
		}

		res, err := factory.NewScope().Fetch(r.Context(), desc, req.Query, req.OwnerID, req.Context)
		if err != nil {
			return classify(err)
		}
		writeJSON(w, http.StatusOK, res)
		return nil
	})
}

// RenderHandler serves engine.Scope.Render, answering with HTML.
func RenderHandler(factory ScopeFactory, fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return handle(opts, func(w http.ResponseWriter, r *http.Request) error {
		var req renderRequest
		desc, err := decode(w, r, opts, &req, func() json.RawMessage { return req.Block })
		if err != nil {
			return err
		}

		out, err := factory.NewScope().Render(r.Context(), desc, req.InnerHTML, req.IsEditing, req.OwnerID, req.Context)
		if err != nil {
			return classify(err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out))
		return nil
	})
}

func handle(opts Options, fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		if err := fn(w, r); err != nil {
			code := http.StatusInternalServerError
			var httpErr HTTPError
			if errors.As(err, &httpErr) {
				code = httpErr.StatusCode()
			}
			log := opts.Logger.WithError(err)
			if code >= http.StatusInternalServerError {
				log.Error("block request failed", map[string]any{"path": r.URL.Path})
			} else {
				log.Debug("block request rejected", map[string]any{"path": r.URL.Path, "status": code})
			}
			writeError(w, code, err)
		}
	})
}

// decode reads the JSON envelope into req and validates the embedded block
// descriptor against the wire schema.
func decode(w http.ResponseWriter, r *http.Request, opts Options, req any, block func() json.RawMessage) (model.Descriptor, error) {
	body := http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		return model.Descriptor{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("blockapi: decode request: %w", err)}
	}
	raw := block()
	if len(raw) == 0 {
		return model.Descriptor{}, StatusError{Code: http.StatusBadRequest, Err: errors.New("blockapi: block is required")}
	}
	desc, err := blocks.Decode(raw)
	if err != nil {
		return model.Descriptor{}, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return desc, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, registry.ErrBlockTypeNotFound):
		return StatusError{Code: http.StatusNotFound, Err: err}
	case errors.Is(err, engine.ErrTypeRequired):
		return StatusError{Code: http.StatusBadRequest, Err: err}
	default:
		return err
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, code int, err error) {
	resp := errorResponse{Error: http.StatusText(code)}
	if code < http.StatusInternalServerError {
		resp.Error = err.Error()
		var decodeErr *blocks.DecodeError
		if errors.As(err, &decodeErr) {
			resp.Problems = decodeErr.Problems
		}
	}
	writeJSON(w, code, resp)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
