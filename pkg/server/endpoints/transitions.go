package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/centricity/ordersync/pkg/server"
	"github.com/centricity/ordersync/pkg/store"
)

const defaultTransitionListLimit = 50

// TransitionResponse is one applied transition in API responses
type TransitionResponse struct {
	ID             uint      `json:"id"`
	SweepRunID     uint      `json:"sweep_run_id"`
	Subdomain      string    `json:"subdomain"`
	OrderID        int64     `json:"order_id"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	OrderCreatedAt time.Time `json:"order_created_at"`
	AppliedAt      time.Time `json:"applied_at"`
}

// RegisterTransitionsEndpoints registers the transitions endpoint
func RegisterTransitionsEndpoints(s *server.Server) {
	s.Router.HandleFunc("/transitions", handleListTransitions(s.TransitionsStore)).Methods("GET")
}

func handleListTransitions(transitions store.TransitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultTransitionListLimit
		if val := r.URL.Query().Get("limit"); val != "" {
			parsed, err := strconv.Atoi(val)
			if err != nil || parsed <= 0 {
				respondWithError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}
		subdomain := r.URL.Query().Get("store")

		rows, err := transitions.ListTransitions(subdomain, limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list transitions")
			return
		}

		result := make([]TransitionResponse, len(rows))
		for i, row := range rows {
			result[i] = TransitionResponse{
				ID:             row.ID,
				SweepRunID:     row.SweepRunID,
				Subdomain:      row.Subdomain,
				OrderID:        row.OrderID,
				FromStatus:     row.FromStatus,
				ToStatus:       row.ToStatus,
				OrderCreatedAt: row.OrderCreatedAt,
				AppliedAt:      row.AppliedAt,
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"transitions": result})
	}
}
