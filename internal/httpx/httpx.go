// Package httpx holds the JSON request/response helpers shared by handlers
// and middleware.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Message: msg})
}

// WriteErr maps err onto an HTTP status and writes it. Internal failures are
// reported without their detail.
func WriteErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Message: err.Error()}
	var pe *apperr.ParamError
	if errors.As(err, &pe) {
		resp.Field = pe.Field
	}
	if status == http.StatusInternalServerError && !errors.Is(err, apperr.ErrInconsistentState) {
		resp.Message = "internal server error"
	}
	WriteJSON(w, status, resp)
}

// StatusFor returns the HTTP status for err
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func ReadJSON(r *http.Request, dst any, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing json")
	}
	return nil
}
