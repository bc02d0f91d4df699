package endpoints

import (
	"net/http"

	"github.com/centricity/ordersync/pkg/server"
	"github.com/centricity/ordersync/pkg/store"
)

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// RegisterHealthEndpoint registers the health endpoint
func RegisterHealthEndpoint(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore)).Methods("GET")
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "error",
				Database: "unreachable",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Database: "ok",
		})
	}
}
