package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
	"github.com/rajeshtiwari2503/spareflow-sub005/service"
	"github.com/rajeshtiwari2503/spareflow-sub005/store"
)

// ShipmentHandler exposes the gateway to the surrounding CRUD application as
// a small JSON API. All business decisions live in the service package.
type ShipmentHandler struct {
	Gateway *service.CarrierGateway
	Audit   store.AuditStore
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// CreateShipment handles POST /api/shipments.
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req models.ShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.Gateway.CreateShipment(r.Context(), req)
	if !result.Success {
		// Validation failures are the caller's bug.
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// TrackShipment handles GET /api/shipments/track?awb=...
func (h *ShipmentHandler) TrackShipment(w http.ResponseWriter, r *http.Request) {
	awb := r.URL.Query().Get("awb")
	snapshot, err := h.Gateway.TrackShipment(r.Context(), awb)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// TrackShipments handles POST /api/shipments/track/batch.
func (h *ShipmentHandler) TrackShipments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AWBNumbers []string `json:"awb_numbers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshots := h.Gateway.TrackShipments(r.Context(), body.AWBNumbers)
	writeJSON(w, http.StatusOK, snapshots)
}

// CancelShipments handles POST /api/shipments/cancel.
func (h *ShipmentHandler) CancelShipments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AWBNumbers []string `json:"awb_numbers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Gateway.CancelShipments(r.Context(), body.AWBNumbers))
}

// CheckServiceability handles GET /api/serviceability?origin=...&destination=...
func (h *ShipmentHandler) CheckServiceability(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	result, err := h.Gateway.CheckServiceability(r.Context(), origin, destination)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetLabel handles GET /api/shipments/label?awb=...
func (h *ShipmentHandler) GetLabel(w http.ResponseWriter, r *http.Request) {
	awb := r.URL.Query().Get("awb")
	labelURL, err := h.Gateway.GetLabel(r.Context(), awb)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"label_url": labelURL})
}

// ListAttempts handles GET /api/shipments/attempts?ref=...&limit=...&offset=...
// Diagnostics view over the audit trail.
func (h *ShipmentHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		http.Error(w, "audit store not configured", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.Audit.ListAttempts(r.Context(), r.URL.Query().Get("ref"), int32(limit), int32(offset))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
