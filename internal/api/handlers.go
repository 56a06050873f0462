package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storeops/tally/internal/auth"
	"github.com/storeops/tally/internal/store"
	"github.com/storeops/tally/internal/types"
	"github.com/storeops/tally/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	store   *store.SQLiteStore
	auth    *auth.Authenticator
	version string
}

// NewHandler creates a new Handler
func NewHandler(s *store.SQLiteStore, a *auth.Authenticator, version string) *Handler {
	return &Handler{
		store:   s,
		auth:    a,
		version: version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.EventCount(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := types.HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		EventCount: count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, store.ErrAuthNotInitialized) {
			// One generic answer for every rejection path.
			WriteProblem(w, r, http.StatusUnauthorized, "Invalid login")
			return
		}
		slog.Error("login failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types.LoginResponse{Token: token})
}

// ChangeLogin handles POST /admin/change-login
func (h *Handler) ChangeLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("username", req.Username))
	c.Add(validation.ValidateRequired("password", req.Password))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	if err := h.auth.ChangeLogin(r.Context(), req.Username, req.Password); err != nil {
		slog.Error("change login failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeOK(w)
}

// GetSettings handles GET /meta/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// ListUnits handles GET /meta/units
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.store.ListUnits(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSONList(w, units)
}

// ListLocations handles GET /meta/locations
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.ListLocations(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSONList(w, locations)
}

// ListItems handles GET /items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	items, err := h.store.ListItems(r.Context(), includeInactive)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSONList(w, items)
}

// CreateItem handles POST /items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req types.ItemParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	if errs := validateItemParams(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Item contains invalid fields", errs)
		return
	}

	id, err := h.store.CreateItem(r.Context(), req)
	if err != nil {
		slog.Error("create item failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		ID string `json:"id"`
	}{ID: id})
}

// UpdateItem handles PUT /items/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req types.ItemParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	if errs := validateItemParams(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Item contains invalid fields", errs)
		return
	}

	if err := h.store.UpdateItem(r.Context(), id, req); err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeOK(w)
}

// OnHand handles GET /inventory/onhand. Returns on-hand totals per item
// (sum of deltas in base units).
func (h *Handler) OnHand(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.OnHand(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(totals)
}

func validateItemParams(p types.ItemParams) []validation.ValidationError {
	var c validation.Collector
	c.Add(validation.ValidateRequired("name", p.Name))
	c.Add(validation.ValidateMaxLength("name", p.Name, 200))
	c.Add(validation.ValidateRequired("base_unit_id", p.BaseUnitID))
	return c.Errors()
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK bool `json:"ok"`
	}{OK: true})
}

// writeJSONList encodes a slice, ensuring [] instead of null for empty.
func writeJSONList[T any](w http.ResponseWriter, list []T) {
	if list == nil {
		list = []T{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
