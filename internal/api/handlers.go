/**
 * @description
 * This file defines the HTTP handlers for the vendor Resource API. Handlers are
 * responsible for parsing requests, calling the VendorService, and translating its
 * errors into status codes and `{"error": "..."}` bodies.
 *
 * @dependencies
 * - Chi router for URL parameter handling.
 * - The service's internal packages for app logic and the session middleware.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sumamakhan761/vendor-management/internal/app"
	"github.com/sumamakhan761/vendor-management/pkg/middleware"
)

const maxRequestBodyBytes = 1 << 20

// VendorHandler holds the dependencies for vendor-related handlers.
type VendorHandler struct {
	service *app.VendorService
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(service *app.VendorService) *VendorHandler {
	return &VendorHandler{service: service}
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ListVendors handles listing all vendors of the authenticated user.
func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	vendors, err := h.service.ListVendors(r.Context(), session)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch vendors")
		return
	}

	writeJSON(w, http.StatusOK, vendors)
}

// CreateVendor handles the creation of a new vendor.
func (h *VendorHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		writeServiceError(w, app.ErrUnauthorized, "")
		return
	}

	var input app.VendorInput
	if !decodeBody(w, r, &input) {
		return
	}

	vendor, err := h.service.CreateVendor(r.Context(), session, input)
	if err != nil {
		writeServiceError(w, err, "Failed to create vendor")
		return
	}

	writeJSON(w, http.StatusCreated, vendor)
}

// UpdateVendor handles partial or full updates of a vendor.
func (h *VendorHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		writeServiceError(w, app.ErrUnauthorized, "")
		return
	}

	var patch app.VendorPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	vendor, err := h.service.UpdateVendor(r.Context(), session, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err, "Failed to update vendor")
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// DeleteVendor handles the deletion of a specific vendor.
func (h *VendorHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	if err := h.service.DeleteVendor(r.Context(), session, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "Failed to delete vendor")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Vendor deleted successfully"})
}

// decodeBody reads a JSON body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// writeServiceError maps service errors onto the HTTP error contract. Anything
// unrecognised is reported as a 500 with fallback as the message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *app.ValidationError

	switch {
	case errors.Is(err, app.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: app.ErrUnauthorized.Error()})
	case errors.Is(err, app.ErrMissingUserID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: app.ErrMissingUserID.Error()})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: app.ErrValidation.Error(), Fields: validationErr.Fields})
	case errors.Is(err, app.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: app.ErrValidation.Error()})
	case errors.Is(err, app.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: app.ErrNotFound.Error()})
	case errors.Is(err, app.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: app.ErrForbidden.Error()})
	default:
		log.Printf("level=error component=api msg=\"request failed\" err=%v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

// writeJSON is a helper to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}
