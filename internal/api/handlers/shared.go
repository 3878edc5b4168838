package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 10 << 20

// parseJSON decodes the request body into a fresh T.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("empty request body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to parse request body: %w", err)
	}
	return v, nil
}

// query returns a trimmed query parameter.
func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// logFailure records a 500 with the request id and the wrapped cause.
func logFailure(r *http.Request, message string, err error) {
	log.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg(message)
}

// respondInternalError logs the cause and sends {error, details}.
func respondInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logFailure(r, message, err)
	response.RespondError(w, http.StatusInternalServerError, message, err.Error())
}
