// Package api exposes the metadata configuration service over HTTP for the
// host system's admin UI.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
)

// MetadataHandler handles HTTP requests for metadata-display configurations
type MetadataHandler struct {
	service solrmetadata.Service
}

// NewMetadataHandler creates a new metadata configuration handler
func NewMetadataHandler(service solrmetadata.Service) *MetadataHandler {
	return &MetadataHandler{service: service}
}

// Routes returns the routes for metadata configurations
func (h *MetadataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/configurations", h.ListConfigurations)
	r.Post("/configurations", h.CreateConfiguration)
	r.Get("/configurations/{name}", h.GetConfiguration)
	r.Delete("/configurations/{name}", h.DeleteConfiguration)

	r.Get("/configurations/{name}/fields", h.GetFields)
	r.Put("/configurations/{name}/fields", h.UpdateFields)
	r.Delete("/configurations/{name}/fields", h.DeleteFields)

	r.Get("/configurations/{name}/description", h.RetrieveDescription)
	r.Put("/configurations/{name}/description", h.UpdateDescription)

	r.Put("/configurations/{name}/cmodels", h.UpdateCmodels)

	r.Post("/associations/lookup", h.LookupAssociations)

	return r
}

// CreateConfigurationRequest is the request body for creating a configuration
type CreateConfigurationRequest struct {
	Name string `json:"name"`
}

// ConfigurationResponse is the response body for a configuration
type ConfigurationResponse struct {
	Name        string                        `json:"name"`
	Cmodels     []string                      `json:"cmodels"`
	Description solrmetadata.DescriptionBlock `json:"description"`
}

// FieldsRequest is the request body for updating fields
type FieldsRequest struct {
	Fields []solrmetadata.Field `json:"fields"`
}

// DeleteFieldsRequest is the request body for deleting fields
type DeleteFieldsRequest struct {
	SolrFields []string `json:"solr_fields"`
}

// CmodelsRequest is the request body for updating a configuration's cmodels
type CmodelsRequest struct {
	Cmodels []string `json:"cmodels"`
}

// LookupAssociationsRequest is the request body for an association lookup
type LookupAssociationsRequest struct {
	Cmodels []string `json:"cmodels"`
}

// ListConfigurations lists the names of all stored configurations
func (h *MetadataHandler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListConfigurations(r.Context())
	if err != nil {
		slog.Error("Failed to list configurations", "error", err)
		http.Error(w, "Failed to list configurations", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}

	render.JSON(w, r, map[string][]string{"configurations": names})
}

// CreateConfiguration creates a new named configuration
func (h *MetadataHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req CreateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Configuration name is required", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateConfiguration(r.Context(), req.Name); err != nil {
		if errors.Is(err, solrmetadata.ErrConfigurationExists) {
			http.Error(w, "Configuration already exists", http.StatusConflict)
			return
		}
		slog.Error("Failed to create configuration", "name", req.Name, "error", err)
		http.Error(w, "Failed to create configuration", http.StatusInternalServerError)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"name": req.Name})
}

// GetConfiguration returns the assembled view of a configuration
func (h *MetadataHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	configuration, err := h.service.GetConfiguration(r.Context(), name)
	if err != nil {
		if errors.Is(err, solrmetadata.ErrConfigurationNotFound) {
			http.Error(w, "Configuration not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get configuration", "name", name, "error", err)
		http.Error(w, "Failed to get configuration", http.StatusInternalServerError)
		return
	}
	if configuration.Cmodels == nil {
		configuration.Cmodels = []string{}
	}

	render.JSON(w, r, ConfigurationResponse{
		Name:        configuration.Name,
		Cmodels:     configuration.Cmodels,
		Description: configuration.Description,
	})
}

// DeleteConfiguration removes a configuration and its cmodel associations
func (h *MetadataHandler) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.service.DeleteConfiguration(r.Context(), name); err != nil {
		slog.Error("Failed to delete configuration", "name", name, "error", err)
		http.Error(w, "Failed to delete configuration", http.StatusInternalServerError)
		return
	}
	// The config-store delete does not cascade to the association table, so
	// the HTTP surface cleans it up explicitly.
	if err := h.service.RemoveAssociationsForConfiguration(r.Context(), name); err != nil {
		slog.Error("Failed to remove associations", "name", name, "error", err)
		http.Error(w, "Failed to remove associations", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetFields returns the configuration's fields in display order
func (h *MetadataHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	fields, err := h.service.GetFields(r.Context(), name)
	if err != nil {
		slog.Error("Failed to get fields", "name", name, "error", err)
		http.Error(w, "Failed to get fields", http.StatusInternalServerError)
		return
	}
	if fields == nil {
		fields = []solrmetadata.Field{}
	}

	render.JSON(w, r, FieldsRequest{Fields: fields})
}

// UpdateFields upserts fields on the configuration
func (h *MetadataHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req FieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateFields(r.Context(), name, req.Fields); err != nil {
		slog.Error("Failed to update fields", "name", name, "error", err)
		http.Error(w, "Failed to update fields", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteFields removes the named solr fields from the configuration
func (h *MetadataHandler) DeleteFields(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req DeleteFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteFields(r.Context(), name, req.SolrFields); err != nil {
		slog.Error("Failed to delete fields", "name", name, "error", err)
		http.Error(w, "Failed to delete fields", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetrieveDescription returns the configuration's description block
func (h *MetadataHandler) RetrieveDescription(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	description, err := h.service.RetrieveDescription(r.Context(), name)
	if err != nil {
		slog.Error("Failed to retrieve description", "name", name, "error", err)
		http.Error(w, "Failed to retrieve description", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, description)
}

// UpdateDescription writes the configuration's description block
func (h *MetadataHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req solrmetadata.DescriptionBlock
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateDescription(r.Context(), name, req); err != nil {
		slog.Error("Failed to update description", "name", name, "error", err)
		http.Error(w, "Failed to update description", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateCmodels writes the declared cmodel list and reconciles the
// association table
func (h *MetadataHandler) UpdateCmodels(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req CmodelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateCmodels(r.Context(), name, req.Cmodels); err != nil {
		slog.Error("Failed to update cmodels", "name", name, "error", err)
		http.Error(w, "Failed to update cmodels", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LookupAssociations returns the configurations applying to a set of cmodels
func (h *MetadataHandler) LookupAssociations(w http.ResponseWriter, r *http.Request) {
	var req LookupAssociationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	associations, err := h.service.GetAssociationsByCmodels(r.Context(), req.Cmodels)
	if err != nil {
		slog.Error("Failed to look up associations", "error", err)
		http.Error(w, "Failed to look up associations", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, map[string]map[string]solrmetadata.Association{"associations": associations})
}
