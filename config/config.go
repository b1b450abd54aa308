package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// Config holds everything the gateway process reads from the environment.
// It is loaded exactly once at startup; every field is read-only afterwards.
type Config struct {
	// Carrier account settings
	CARRIER_CUSTOMER_CODE string
	CARRIER_API_KEY       string
	CARRIER_SERVICE_TYPE  string
	CARRIER_COMMODITY_ID  string
	CARRIER_REVERSE_ONLY  string // "true" forces the reverse-only account quirk
	CARRIER_ENDPOINTS     string // comma separated base URLs, tried in order

	// Tracking API uses separate credentials from consignment creation
	CARRIER_TRACKING_USER string
	CARRIER_TRACKING_PASS string

	// Database (PostgreSQL) config for the audit trail
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string

	// Kafka config for awb attempt events
	KAFKA_BROKER string
	KAFKA_TOPIC  string

	// RabbitMQ config for fallback alerts
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string

	PORT string
}

// reverseOnlyCustomerCodes are carrier accounts known to be contractually
// restricted to the reverse product, regardless of the env flag. The builder
// swaps address roles for these accounts (see service.BuildConsignment).
var reverseOnlyCustomerCodes = map[string]bool{
	"SF99201R": true,
	"SF99377R": true,
}

// LoadConfig reads environment variables into a Config, it loads a local
// .env file first when one exists so dev setups work without exporting vars.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		CARRIER_CUSTOMER_CODE: os.Getenv("CARRIER_CUSTOMER_CODE"),
		CARRIER_API_KEY:       os.Getenv("CARRIER_API_KEY"),
		CARRIER_SERVICE_TYPE:  os.Getenv("CARRIER_SERVICE_TYPE"),
		CARRIER_COMMODITY_ID:  os.Getenv("CARRIER_COMMODITY_ID"),
		CARRIER_REVERSE_ONLY:  os.Getenv("CARRIER_REVERSE_ONLY"),
		CARRIER_ENDPOINTS:     os.Getenv("CARRIER_ENDPOINTS"),

		CARRIER_TRACKING_USER: os.Getenv("CARRIER_TRACKING_USER"),
		CARRIER_TRACKING_PASS: os.Getenv("CARRIER_TRACKING_PASS"),

		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),

		KAFKA_BROKER: os.Getenv("KAFKA_BROKER"),
		KAFKA_TOPIC:  os.Getenv("KAFKA_TOPIC"),

		RABBITMQ_USER:     os.Getenv("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: os.Getenv("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     os.Getenv("RABBITMQ_HOST"),
		RABBITMQ_PORT:     os.Getenv("RABBITMQ_PORT"),

		PORT: os.Getenv("PORT"),
	}
	if cfg.PORT == "" {
		cfg.PORT = "8080"
	}
	if cfg.CARRIER_SERVICE_TYPE == "" {
		cfg.CARRIER_SERVICE_TYPE = "GROUND EXPRESS"
	}
	if cfg.CARRIER_COMMODITY_ID == "" {
		cfg.CARRIER_COMMODITY_ID = "7" // spare parts commodity classification
	}
	return cfg
}

// Profile resolves the immutable carrier account profile the gateway is
// constructed with. An account is reverse-only when either the env flag says
// so or its customer code is in the known reverse-only set, the decision is
// made once here and never re-derived at call sites.
func (c *Config) Profile() models.CarrierAccountProfile {
	code := strings.TrimSpace(c.CARRIER_CUSTOMER_CODE)
	reverseOnly := strings.EqualFold(c.CARRIER_REVERSE_ONLY, "true") ||
		reverseOnlyCustomerCodes[code]

	return models.CarrierAccountProfile{
		CustomerCode:         code,
		APIKey:               strings.TrimSpace(c.CARRIER_API_KEY),
		ServiceType:          c.CARRIER_SERVICE_TYPE,
		CommodityID:          c.CARRIER_COMMODITY_ID,
		IsReverseOnlyAccount: reverseOnly,
		TrackingUsername:     c.CARRIER_TRACKING_USER,
		TrackingPassword:     c.CARRIER_TRACKING_PASS,
	}
}

// Endpoints returns the ordered list of carrier base URLs to try. An empty
// env var yields no endpoints, which simply pushes every call to fallback.
func (c *Config) Endpoints() []string {
	if strings.TrimSpace(c.CARRIER_ENDPOINTS) == "" {
		return nil
	}
	parts := strings.Split(c.CARRIER_ENDPOINTS, ",")
	endpoints := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			endpoints = append(endpoints, p)
		}
	}
	return endpoints
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *Config) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME)
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string,
// defaulting the standard host/port when missing so a bare setup still boots.
func (c *Config) GetRabbitMQURL() string {
	host := c.RABBITMQ_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RABBITMQ_USER, c.RABBITMQ_PASSWORD, host, port)
}

// HasDatabase reports whether a postgres audit store can be constructed.
func (c *Config) HasDatabase() bool {
	return c.DB_HOST != "" && c.DB_USER != "" && c.DB_NAME != ""
}

// HasKafka reports whether the attempt-event producer can be constructed.
func (c *Config) HasKafka() bool {
	return c.KAFKA_BROKER != ""
}

// HasRabbitMQ reports whether the fallback alert client can be constructed.
func (c *Config) HasRabbitMQ() bool {
	return c.RABBITMQ_HOST != ""
}
