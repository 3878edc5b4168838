package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/backend"
)

// ProxyHandler forwards model runs and price curve uploads to the model backend.
// Nothing is interpreted here; bodies and event streams pass through.
type ProxyHandler struct {
	client *backend.Client
}

// NewProxyHandler creates a new ProxyHandler for the given backend client.
func NewProxyHandler(client *backend.Client) *ProxyHandler {
	return &ProxyHandler{
		client: client,
	}
}

// respondBackendError maps a backend failure onto {status: "error", message}.
// Backend status codes are passed through; everything else is a 500.
func respondBackendError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := backend.AsStatusError(err); ok {
		log.Warn().
			Int("status", se.StatusCode).
			Str("path", r.URL.Path).
			Msg("backend returned an error")
		response.RespondStatusError(w, se.StatusCode, se.Message)
		return
	}

	logFailure(r, "backend request failed", err)
	message := err.Error()
	if errors.Is(err, apperrors.ErrBackendUnavailable) {
		message = backend.ConnectHint
	}
	response.RespondStatusError(w, http.StatusInternalServerError, message)
}

// RunModel handles POST requests that run the financial model.
//
// Endpoint: POST /api/run-model
// Request Body: any JSON value, forwarded unchanged
// Response: the backend's JSON answer
// Error: backend status with {status, message}, or 500 if the backend is unreachable
func (h *ProxyHandler) RunModel(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, backend.PathRunModel)
}

// RunModelStream handles POST requests that run the model with progress events.
//
// Endpoint: POST /api/run-model-stream
// Request Body: any JSON value, forwarded unchanged
// Response: text/event-stream relayed from the backend
func (h *ProxyHandler) RunModelStream(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[any](r)
	if err != nil {
		response.RespondStatusError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.stream(w, r, backend.PathRunModelStream, body)
}

// RunSensitivity handles POST requests that run a sensitivity sweep and wait for it.
// The body is reduced as for RunSensitivityStream.
//
// Endpoint: POST /api/run-sensitivity
// Response: the backend's JSON answer
// Error: backend status with {status, message}, or 500 if the backend is unreachable
func (h *ProxyHandler) RunSensitivity(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[map[string]any](r)
	if err != nil {
		response.RespondStatusError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.client.PostJSON(r.Context(), backend.PathSensitivity, backend.SensitivityRequest(body))
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, data)
}

// RunSensitivityStream handles POST requests that run a sensitivity sweep with
// progress events. The body is reduced to {config|config_file, prefix, portfolio}.
//
// Endpoint: POST /api/run-sensitivity-stream
// Response: text/event-stream relayed from the backend
func (h *ProxyHandler) RunSensitivityStream(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[map[string]any](r)
	if err != nil {
		response.RespondStatusError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.stream(w, r, backend.PathSensitivityStream, backend.SensitivityRequest(body))
}

// AnalyzePriceCurves handles POST requests that preview an uploaded price curve file.
//
// Endpoint: POST /api/price-curves/analyze
// Request Body: multipart form, forwarded unchanged
// Response: the backend's JSON answer
func (h *ProxyHandler) AnalyzePriceCurves(w http.ResponseWriter, r *http.Request) {
	h.forwardRaw(w, r, backend.PathAnalyzePriceCurves)
}

// UploadPriceCurves handles POST requests that import an uploaded price curve file.
//
// Endpoint: POST /api/price-curves/upload
// Request Body: multipart form, forwarded unchanged
// Response: the backend's JSON answer
func (h *ProxyHandler) UploadPriceCurves(w http.ResponseWriter, r *http.Request) {
	h.forwardRaw(w, r, backend.PathUploadPriceCurves)
}

func (h *ProxyHandler) forwardJSON(w http.ResponseWriter, r *http.Request, path string) {
	body, err := parseJSON[any](r)
	if err != nil {
		response.RespondStatusError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.client.PostJSON(r.Context(), path, body)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, data)
}

func (h *ProxyHandler) forwardRaw(w http.ResponseWriter, r *http.Request, path string) {
	data, err := h.client.PostRaw(r.Context(), path, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, data)
}

// stream relays the backend event stream. Cancelling the request context, as a client
// disconnect does, aborts the upstream call.
func (h *ProxyHandler) stream(w http.ResponseWriter, r *http.Request, path string, body any) {
	upstream, err := h.client.Stream(r.Context(), path, body)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	defer upstream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	n, err := backend.Relay(w, upstream)
	if err != nil && r.Context().Err() == nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Int64("bytes", n).Msg("event stream relay ended early")
		return
	}
	log.Debug().Str("path", r.URL.Path).Int64("bytes", n).Msg("event stream finished")
}
