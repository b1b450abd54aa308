package main

import (
	"log"
	"net/http"
	"time"

	"github.com/rajeshtiwari2503/spareflow-sub005/config"
	"github.com/rajeshtiwari2503/spareflow-sub005/handlers"
	"github.com/rajeshtiwari2503/spareflow-sub005/internal/kafka"
	"github.com/rajeshtiwari2503/spareflow-sub005/internal/rabbitmq"
	"github.com/rajeshtiwari2503/spareflow-sub005/routes"
	"github.com/rajeshtiwari2503/spareflow-sub005/service"
	"github.com/rajeshtiwari2503/spareflow-sub005/store"
)

// main wires the carrier gateway: config -> audit store -> event sinks ->
// gateway -> HTTP surface. Every piece degrades gracefully: a missing
// database, broker, or carrier credential reduces capability, never boots
// fail.
func main() {
	cfg := config.LoadConfig()
	profile := cfg.Profile()

	// Audit store: postgres when configured, in-memory otherwise.
	var auditStore store.AuditStore
	if cfg.HasDatabase() {
		pg, err := store.NewPostgresStore(cfg.GetDBURL())
		if err != nil {
			log.Fatalf("failed to create audit store: %v", err)
		}
		defer pg.Close()
		auditStore = pg
	} else {
		log.Println("No database configured, keeping audit trail in memory")
		auditStore = store.NewMemoryStore()
	}

	// Kafka producer for awb.attempt events, optional.
	var producer kafka.Publisher
	if cfg.HasKafka() {
		topic := cfg.KAFKA_TOPIC
		if topic == "" {
			topic = "awb.attempts"
		}
		kp := kafka.NewKafkaProducer(cfg.KAFKA_BROKER, topic)
		defer kp.Close()
		producer = kp
	}

	// RabbitMQ client for fallback alerts, optional.
	var alerts service.AlertPublisher
	if cfg.HasRabbitMQ() {
		client, err := rabbitmq.NewClient(cfg.GetRabbitMQURL())
		if err != nil {
			log.Printf("RabbitMQ unavailable, fallback alerts disabled: %v", err)
		} else {
			defer client.Close()
			if err := client.CreateQueue(service.FallbackAlertQueue); err != nil {
				log.Fatalf("failed to create alert queue: %v", err)
			}
			alerts = client
		}
	}

	// Carrier transport over the configured endpoint list. No endpoints or
	// no credentials means the gateway runs permanently in fallback mode.
	var transport service.Transport
	if endpoints := cfg.Endpoints(); len(endpoints) > 0 {
		transport = service.NewFailoverTransport(endpoints, &http.Client{}, 30*time.Second)
	} else {
		log.Println("No carrier endpoints configured, running in fallback mode")
	}
	if !profile.HasValidCredentials() {
		log.Println("Carrier credentials missing, running in fallback mode")
	}

	audit := service.NewStoreAuditLogger(auditStore, producer, alerts)
	gateway := service.NewCarrierGateway(profile, transport, service.NewFallbackGenerator(), audit)

	mux := routes.SetupRoutes(&handlers.ShipmentHandler{
		Gateway: gateway,
		Audit:   auditStore,
	})

	log.Printf("carrier gateway listening on :%s", cfg.PORT)
	if err := http.ListenAndServe(":"+cfg.PORT, mux); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
