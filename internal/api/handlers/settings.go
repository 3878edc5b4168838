package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// SettingsHandler handles HTTP requests for model settings, the sensitivity
// configuration, the model defaults and the asset defaults.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler with the provided service dependency.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// respondMessageError sends the {error, message} shape the settings pages read.
func respondMessageError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logFailure(r, message, err)
	response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   message,
		"message": err.Error(),
	})
}

// ModelSettings handles GET requests for the stored model settings.
//
// Endpoint: GET /api/model-settings
// Response: 200 OK with {settings} (null when none are stored)
// Error: 500 Internal Server Error if retrieval fails
func (h *SettingsHandler) ModelSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetModelSettings(r.Context())
	if err != nil {
		respondMessageError(w, r, "Failed to fetch model settings", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// SaveModelSettings handles POST requests that upsert the model settings.
//
// Endpoint: POST /api/model-settings
// Request Body: any JSON object
// Response: 200 OK with {success, message, updated, created}
// Error: 400 Bad Request if the body is not a JSON object
// Error: 500 Internal Server Error if the save fails
func (h *SettingsHandler) SaveModelSettings(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[map[string]any](r)
	if err != nil || body == nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", errDetails(err))
		return
	}

	result, err := h.settingsService.SaveModelSettings(r.Context(), body)
	if err != nil {
		respondMessageError(w, r, "Failed to save model settings", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Model settings saved successfully",
		"updated": result.Modified > 0,
		"created": result.Upserted,
	})
}

// SensitivityInputs handles GET requests for the shared sensitivity configuration.
// A missing or unreadable configuration is answered with the default structure.
//
// Endpoint: GET /api/sensitivity-inputs
// Response: 200 OK with the configuration
func (h *SettingsHandler) SensitivityInputs(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.settingsService.GetSensitivityInputs(r.Context()))
}

// SaveSensitivityInputs handles POST requests that upsert the sensitivity configuration.
//
// Endpoint: POST /api/sensitivity-inputs
// Request Body: any JSON object
// Response: 200 OK with {status, message, result: {matched, modified, upserted}}
// Error: 400 Bad Request if the body is not a JSON object
// Error: 500 Internal Server Error with {message, error} if the save fails
func (h *SettingsHandler) SaveSensitivityInputs(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[map[string]any](r)
	if err != nil || body == nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", errDetails(err))
		return
	}

	result, err := h.settingsService.SaveSensitivityInputs(r.Context(), body)
	if err != nil {
		logFailure(r, "Failed to save sensitivity inputs", err)
		response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to save sensitivity inputs",
			"error":   err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Sensitivity config saved successfully",
		"result":  result,
	})
}

// Defaults handles GET requests for the model defaults with their allowed values.
//
// Endpoint: GET /api/get-defaults
// Response: 200 OK with [{name, currentValue, options}]
// Error: 404 Not Found if no defaults document is stored
// Error: 500 Internal Server Error if retrieval fails
func (h *SettingsHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.settingsService.GetDefaults(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrDefaultsNotFound) {
			response.RespondError(w, http.StatusNotFound, "CONFIG_Defaults document not found", nil)
			return
		}
		logFailure(r, "Could not fetch defaults from database", err)
		response.RespondError(w, http.StatusInternalServerError, "Could not fetch defaults from database", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, defaults)
}

// SaveDefaults handles POST requests that write model defaults.
//
// Endpoint: POST /api/save-defaults
// Request Body: SaveDefaultsRequest ({defaults: [{name, currentValue}]})
// Response: 200 OK with {message}
// Error: 400 Bad Request if the body is invalid
// Error: 500 Internal Server Error if the save fails
func (h *SettingsHandler) SaveDefaults(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[model.SaveDefaultsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.settingsService.SaveDefaults(r.Context(), req.Defaults); err != nil {
		if errors.Is(err, apperrors.ErrInvalidBody) {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		logFailure(r, "Could not update config in database", err)
		response.RespondError(w, http.StatusInternalServerError, "Could not update config in database", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"message": "Config updated successfully"})
}

// Hints returned with the asset defaults errors.
const (
	assetDefaultsInitHint    = "Initialize the defaults with PUT /api/asset-defaults to create default values."
	assetDefaultsInvalidHint = "The document exists but is missing required fields (assetDefaults or platformDefaults). Please reinitialize defaults."
	assetDefaultsExistHint   = "Use POST to update existing defaults"
)

// AssetDefaults handles GET requests for the asset defaults document.
//
// Endpoint: GET /api/asset-defaults
// Response: 200 OK with the document without _id
// Error: 404 Not Found with {error, needsInitialization, hint} if none is stored
// Error: 500 Internal Server Error with needsInitialization if the document is malformed
// Error: 500 Internal Server Error with {error, details} if retrieval fails
func (h *SettingsHandler) AssetDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.settingsService.GetAssetDefaults(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAssetDefaultsNotFound):
			response.RespondJSON(w, http.StatusNotFound, map[string]any{
				"error":               "Asset defaults not found in MongoDB.",
				"needsInitialization": true,
				"hint":                assetDefaultsInitHint,
			})
		case errors.Is(err, apperrors.ErrInvalidAssetDefaults):
			response.RespondJSON(w, http.StatusInternalServerError, map[string]any{
				"error":               "Invalid defaults structure in MongoDB",
				"needsInitialization": true,
				"hint":                assetDefaultsInvalidHint,
			})
		default:
			respondInternalError(w, r, "Failed to read asset defaults from MongoDB", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, defaults)
}

// SaveAssetDefaults handles POST requests that write the asset defaults document.
//
// Endpoint: POST /api/asset-defaults
// Request Body: {assetDefaults, platformDefaults[, metadata]}
// Response: 200 OK with {success, message}
// Error: 400 Bad Request if assetDefaults or platformDefaults is missing
// Error: 500 Internal Server Error if the save fails
func (h *SettingsHandler) SaveAssetDefaults(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[map[string]any](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "Invalid defaults structure", err.Error())
		return
	}

	if err := h.settingsService.SaveAssetDefaults(r.Context(), body); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAssetDefaults):
			response.RespondError(w, http.StatusBadRequest, "Invalid defaults structure", nil)
		case errors.Is(err, docstore.ErrInvalidFieldName):
			response.RespondError(w, http.StatusBadRequest, "Invalid defaults structure", err.Error())
		default:
			respondInternalError(w, r, "Failed to save asset defaults to MongoDB", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Defaults saved successfully to MongoDB",
	})
}

// InitializeAssetDefaults handles PUT requests that store the built-in asset defaults.
//
// Endpoint: PUT /api/asset-defaults
// Response: 200 OK with {success, message, insertedId}
// Error: 409 Conflict with {error, hint} if a document already exists
// Error: 500 Internal Server Error if the insert fails
func (h *SettingsHandler) InitializeAssetDefaults(w http.ResponseWriter, r *http.Request) {
	id, err := h.settingsService.InitializeAssetDefaults(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetDefaultsExist) {
			response.RespondJSON(w, http.StatusConflict, map[string]string{
				"error": "Asset defaults already exist in MongoDB",
				"hint":  assetDefaultsExistHint,
			})
			return
		}
		respondInternalError(w, r, "Failed to initialize asset defaults", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Default asset defaults initialized successfully",
		"insertedId": id,
	})
}

// respondConfigFileError sends the {message, error} shape of the config file endpoints.
func respondConfigFileError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logFailure(r, message, err)
	response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"message": message,
		"error":   err.Error(),
	})
}

// SensitivityConfigFile handles GET requests for the model's sensitivity config file.
//
// Endpoint: GET /api/sensitivity-config (also GET /api/get-sensitivity-config)
// Response: 200 OK with the file contents
// Error: 500 Internal Server Error with {message, error} if the file cannot be read
func (h *SettingsHandler) SensitivityConfigFile(w http.ResponseWriter, r *http.Request) {
	config, err := h.settingsService.GetSensitivityConfigFile()
	if err != nil {
		respondConfigFileError(w, r, "Failed to read sensitivity config", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, config)
}

// SaveSensitivityConfigFile handles POST requests that replace the sensitivity config file.
//
// Endpoint: POST /api/sensitivity-config
// Request Body: any JSON value, written as sent
// Response: 200 OK with {status, message}
// Error: 400 Bad Request if the body is not JSON
// Error: 500 Internal Server Error with {message, error} if the file cannot be written
func (h *SettingsHandler) SaveSensitivityConfigFile(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[any](r)
	if err != nil || body == nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", errDetails(err))
		return
	}

	if err := h.settingsService.SaveSensitivityConfigFile(body); err != nil {
		respondConfigFileError(w, r, "Failed to save sensitivity config", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Configuration saved",
	})
}

func errDetails(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
