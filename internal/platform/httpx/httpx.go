// Package httpx: helpers JSON compartidos por los handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/logger"
)

const maxBodyBytes = 1 << 20

var ErrInvalidJSON = apperr.New(apperr.CodeInvalidInput, "invalid json")

type errorResponse struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError traduce err a status + body. Los errores esperados (not found, forbidden,
// duplicados...) no se loguean como falla; el resto sí, con el request id.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	code := apperr.CodeOf(err)
	if !code.UserFacing() && log != nil {
		log.Error("request failed", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
	}
	WriteJSON(w, code.HTTPStatus(), errorResponse{
		Error:   code,
		Message: apperr.MessageOf(err),
	})
}

// DecodeJSON lee el body (limitado) y rechaza campos desconocidos.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Wrap(apperr.CodeInvalidInput, "request body required", err)
		}
		return apperr.Wrap(apperr.CodeInvalidInput, ErrInvalidJSON.Message, err)
	}
	return nil
}
