package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/kafka"
	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
	"github.com/rajeshtiwari2503/spareflow-sub005/store"
)

// FallbackAlertQueue is the RabbitMQ queue operations watches for shipments
// booked on synthetic AWBs.
const FallbackAlertQueue = "awb_fallback_alerts"

// AuditLogger records every terminal CreateShipment outcome. It is a
// side-effecting sink: the orchestrator calls it but never depends on it for
// correctness, so a logging failure must never change the shipment result.
type AuditLogger interface {
	Record(ctx context.Context, entry models.AttemptLogEntry)
}

// AlertPublisher is the subset of the rabbitmq client the audit logger uses.
type AlertPublisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

// StoreAuditLogger appends attempts to an AuditStore, publishes an
// "awb.attempt" event to Kafka, and raises a RabbitMQ alert when a fallback
// AWB was issued. All three sinks are optional and best-effort.
type StoreAuditLogger struct {
	store    store.AuditStore
	producer kafka.Publisher
	alerts   AlertPublisher
}

func NewStoreAuditLogger(s store.AuditStore, producer kafka.Publisher, alerts AlertPublisher) *StoreAuditLogger {
	return &StoreAuditLogger{store: s, producer: producer, alerts: alerts}
}

// Record is append-only and safe to call once per retry loop outcome.
// Errors are logged, never returned.
func (l *StoreAuditLogger) Record(ctx context.Context, entry models.AttemptLogEntry) {
	if l.store != nil {
		if err := l.store.AppendAttempt(ctx, entry); err != nil {
			log.Println("failed to append attempt log entry:", err)
		}
	}

	if l.producer != nil {
		event := map[string]interface{}{
			"event":   "awb.attempt",
			"payload": entry,
		}
		// Fire-and-forget so a slow broker never delays the shipment result.
		go func() {
			if err := l.producer.Publish(context.Background(), entry.ShipmentRef, event); err != nil {
				log.Println("failed to publish awb.attempt event:", err)
			}
		}()
	}

	if l.alerts != nil && entry.IsFallback {
		body, err := json.Marshal(entry)
		if err != nil {
			log.Println("failed to marshal fallback alert:", err)
			return
		}
		go func() {
			if err := l.alerts.Publish(context.Background(), FallbackAlertQueue, body); err != nil {
				log.Println("failed to publish fallback alert:", err)
			}
		}()
	}
}

// NopAuditLogger discards every entry. Used when no sinks are configured.
type NopAuditLogger struct{}

func (NopAuditLogger) Record(ctx context.Context, entry models.AttemptLogEntry) {}
