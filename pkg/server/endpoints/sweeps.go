package endpoints

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/model"
	"github.com/centricity/ordersync/pkg/server"
	"github.com/centricity/ordersync/pkg/server/middleware"
	"github.com/centricity/ordersync/pkg/store"
)

const defaultSweepListLimit = 20

// SweepRunResponse is one sweep run in API responses
type SweepRunResponse struct {
	ID         uint       `json:"id"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Fetched    int        `json:"fetched"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// RegisterSweepsEndpoints registers the sweep history and trigger endpoints
func RegisterSweepsEndpoints(s *server.Server) {
	sweeps := s.SweepsStore

	s.Router.HandleFunc("/sweeps", handleListSweeps(sweeps)).Methods("GET")
	s.Router.HandleFunc("/sweeps/latest", handleLatestSweep(sweeps)).Methods("GET")

	admin := middleware.NewAdminAuthenticator(config.AdminTokenSecret())
	s.Router.Handle("/sweeps", admin.Middleware(handleTriggerSweep(s))).Methods("POST")
}

func handleListSweeps(sweeps store.SweepsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultSweepListLimit
		if val := r.URL.Query().Get("limit"); val != "" {
			parsed, err := strconv.Atoi(val)
			if err != nil || parsed <= 0 {
				respondWithError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		runs, err := sweeps.ListSweeps(limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list sweeps")
			return
		}

		result := make([]SweepRunResponse, len(runs))
		for i := range runs {
			result[i] = toSweepRunResponse(&runs[i])
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"sweeps": result})
	}
}

func handleLatestSweep(sweeps store.SweepsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := sweeps.LatestSweep()
		if err != nil {
			if errors.Is(err, store.ErrSweepNotFound) {
				respondWithError(w, http.StatusNotFound, "no sweeps recorded")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch latest sweep")
			return
		}

		respondWithJSON(w, http.StatusOK, toSweepRunResponse(run))
	}
}

func handleTriggerSweep(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Sweeper == nil {
			respondWithError(w, http.StatusServiceUnavailable, "sweeper not available")
			return
		}

		if !s.TryBeginSweep() {
			respondWithError(w, http.StatusConflict, "a sweep is already running")
			return
		}

		// The sweep outlives the request; results land in the sweep history.
		go func() {
			defer s.EndSweep()
			if _, err := s.Sweeper.SweepAll(context.Background(), model.TriggerManual); err != nil {
				log.Error().Err(err).Msg("Manual sweep failed")
			}
		}()

		respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}

func toSweepRunResponse(run *store.SweepRun) SweepRunResponse {
	return SweepRunResponse{
		ID:         run.ID,
		Trigger:    run.Trigger,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Fetched:    run.Fetched,
		Updated:    run.Updated,
		Skipped:    run.Skipped,
		Failed:     run.Failed,
	}
}
