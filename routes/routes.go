package routes

import (
	"net/http"

	"github.com/rajeshtiwari2503/spareflow-sub005/handlers"
)

// CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func route(mux *http.ServeMux, pattern, method string, handler http.HandlerFunc) {
	mux.Handle(pattern, withCORS(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	})))
}

// SetupRoutes wires the gateway's JSON API onto a fresh mux.
func SetupRoutes(shipmentHandler *handlers.ShipmentHandler) *http.ServeMux {
	mux := http.NewServeMux()

	route(mux, "/api/shipments", http.MethodPost, shipmentHandler.CreateShipment)
	route(mux, "/api/shipments/track", http.MethodGet, shipmentHandler.TrackShipment)
	route(mux, "/api/shipments/track/batch", http.MethodPost, shipmentHandler.TrackShipments)
	route(mux, "/api/shipments/cancel", http.MethodPost, shipmentHandler.CancelShipments)
	route(mux, "/api/shipments/label", http.MethodGet, shipmentHandler.GetLabel)
	route(mux, "/api/shipments/attempts", http.MethodGet, shipmentHandler.ListAttempts)
	route(mux, "/api/serviceability", http.MethodGet, shipmentHandler.CheckServiceability)

	return mux
}
