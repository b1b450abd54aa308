package models

import "time"

// CanonicalStatus is the carrier-agnostic tracking status every
// carrier-native scan code is normalized into. The expected progression is
// BOOKED -> PICKED_UP -> IN_TRANSIT -> REACHED_HUB -> OUT_FOR_DELIVERY ->
// DELIVERED, but carriers may skip or repeat steps so it is not enforced.
type CanonicalStatus string

const (
	StatusBooked         CanonicalStatus = "BOOKED"
	StatusPickedUp       CanonicalStatus = "PICKED_UP"
	StatusInTransit      CanonicalStatus = "IN_TRANSIT"
	StatusReachedHub     CanonicalStatus = "REACHED_HUB"
	StatusOutForDelivery CanonicalStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      CanonicalStatus = "DELIVERED"

	// Terminal alternates.
	StatusReturnToOrigin CanonicalStatus = "RETURN_TO_ORIGIN"
	StatusCancelled      CanonicalStatus = "CANCELLED"
	StatusLost           CanonicalStatus = "LOST"
	StatusDamaged        CanonicalStatus = "DAMAGED"

	// StatusUnknown is the catch-all for carrier codes with no mapping.
	StatusUnknown CanonicalStatus = "UNKNOWN"
)

// TrackingEvent is one normalized scan in a shipment's history.
type TrackingEvent struct {
	ScanCode        string          `json:"scan_code"`
	CanonicalStatus CanonicalStatus `json:"status"`
	Location        string          `json:"location"`
	TimestampUTC    time.Time       `json:"timestamp_utc"`
	Description     string          `json:"description"`
}

// TrackingSnapshot is the on-demand view of a shipment's tracking state.
// It is derived fresh on every call and never cached.
type TrackingSnapshot struct {
	AWBNumber     string          `json:"awb_number"`
	CurrentStatus CanonicalStatus `json:"current_status"`
	History       []TrackingEvent `json:"history"`
	Error         string          `json:"error,omitempty"` // set for per-AWB failures in batch tracking
}

// AttemptLogEntry is one append-only audit record, written once per
// orchestration outcome and never mutated.
type AttemptLogEntry struct {
	ShipmentRef  string    `json:"shipment_ref"`
	Success      bool      `json:"success"`
	AWBNumber    string    `json:"awb_number,omitempty"`
	IsFallback   bool      `json:"is_fallback"`
	Error        string    `json:"error,omitempty"`
	TimestampUTC time.Time `json:"timestamp_utc"`
}
