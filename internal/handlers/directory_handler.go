package handlers

import (
	"net/http"

	"nismah/internal/models"
	"nismah/internal/service"
)

// DirectoryHandler handles the resource and counselor directory endpoints
type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// ListResources handles GET /api/resources
func (h *DirectoryHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.directoryService.ListResources(r.URL.Query().Get("lang"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load resources", "Resource listing failed", err)
		return
	}
	if resources == nil {
		resources = []models.Resource{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
}

// ListCounselors handles GET /api/counselors
func (h *DirectoryHandler) ListCounselors(w http.ResponseWriter, r *http.Request) {
	counselors, err := h.directoryService.ListCounselors(r.URL.Query().Get("lang"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load counselors", "Counselor listing failed", err)
		return
	}
	if counselors == nil {
		counselors = []models.Counselor{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"counselors": counselors})
}
