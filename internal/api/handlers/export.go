package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/export"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

const exportFileBase = "export-data"

// ExportHandler handles HTTP requests for data downloads.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler with the provided service dependency.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// ExportData handles GET requests for period totals per asset as JSON, CSV or XLSX.
//
// Endpoint: GET /api/export-data?assetId=&variables=&granularity=&collection=&scenario_id=&unique_id=&format=
// Response: 200 OK with a flat array of rows, or a file attachment for csv and xlsx
// Error: 400 Bad Request if assetId, variables or format is invalid
// Error: 500 Internal Server Error with {error, details} if retrieval fails
func (h *ExportHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	q, format, err := request.ParseExportQuery(request.ExportParams{
		AssetID:     query(r, "assetId"),
		Variables:   query(r, "variables"),
		Granularity: query(r, "granularity"),
		Collection:  query(r, "collection"),
		ScenarioID:  query(r, "scenario_id"),
		UniqueID:    query(r, "unique_id"),
		Format:      query(r, "format"),
	})
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "Invalid export parameters", err.Error())
		return
	}

	table, err := h.exportService.Export(r.Context(), q)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidField) {
			response.RespondError(w, http.StatusBadRequest, "Invalid export parameters", err.Error())
			return
		}
		respondInternalError(w, r, "Failed to fetch data for export", err)
		return
	}

	if format == export.FormatJSON {
		response.RespondJSON(w, http.StatusOK, table.Rows)
		return
	}

	// Nothing reaches the client until the file is complete.
	var buf bytes.Buffer
	if format == export.FormatCSV {
		err = export.WriteCSV(&buf, table)
	} else {
		err = export.WriteXLSX(&buf, table)
	}
	if err != nil {
		respondInternalError(w, r, "Failed to fetch data for export", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(exportFileBase)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logFailure(r, "failed to write export", err)
	}
}
