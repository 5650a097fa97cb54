package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nismah/internal/models"
	"nismah/internal/security"
	"nismah/internal/service"
)

// IncidentHandler handles incident reporting and alert endpoints
type IncidentHandler struct {
	alertService *service.AlertService
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(alertService *service.AlertService) *IncidentHandler {
	return &IncidentHandler{alertService: alertService}
}

type incidentRequest struct {
	Category        string   `json:"category"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	ReporterName    *string  `json:"reporterName"`
	ReporterContact *string  `json:"reporterContact"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// Report handles POST /api/incidents
func (h *IncidentHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	incident := &models.Incident{
		Category:        req.Category,
		Location:        req.Location,
		Description:     req.Description,
		ReporterName:    req.ReporterName,
		ReporterContact: req.ReporterContact,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		SourceIP:        security.GetClientIP(r),
	}

	reporter := AccountFromContext(r.Context())
	entry, err := h.alertService.ReportIncident(r.Context(), incident, reporter)
	if err != nil {
		if errors.Is(err, service.ErrIncidentIncomplete) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to report incident", "Incident report failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Incident reported",
		"alert":   entry,
	})
}

// ListAlerts handles GET /api/alerts
func (h *IncidentHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	viewer := AccountFromContext(r.Context())
	alerts, err := h.alertService.ListAlerts(viewer)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load alerts", "Alert listing failed", err)
		return
	}
	if alerts == nil {
		alerts = []models.AlertWithIncident{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// ResolveAlert handles POST /api/alerts/{id}/resolve
func (h *IncidentHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid alert ID", "", nil)
		return
	}

	actor := AccountFromContext(r.Context())
	if err := h.alertService.ResolveAlert(alertID, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			respondWithError(w, http.StatusForbidden, "Admin access required", "", nil)
		case errors.Is(err, service.ErrAlertNotFound):
			respondWithError(w, http.StatusNotFound, "Alert not found", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to resolve alert", "Alert resolve failed", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Alert resolved"})
}
