package store

import (
	"context"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// AuditStore defines the storage layer for the gateway's attempt audit trail.
// Entries are append-only: one row per orchestration outcome, never updated.
type AuditStore interface {
	// AppendAttempt records one terminal CreateShipment outcome.
	AppendAttempt(ctx context.Context, entry models.AttemptLogEntry) error

	// ListAttempts retrieves recorded attempts, newest first, optionally
	// filtered by the caller's shipment reference. Used for diagnostics only.
	ListAttempts(ctx context.Context, shipmentRef string, limit, offset int32) ([]models.AttemptLogEntry, error)
}
