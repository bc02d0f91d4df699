package server

import (
	"context"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/store"
	"github.com/centricity/ordersync/pkg/sweeper"
)

// Server is the ordersync status server.
type Server struct {
	Config           *config.Config
	Router           *mux.Router
	DB               *gorm.DB
	Sweeper          *sweeper.Sweeper
	SweepsStore      store.SweepsStore
	TransitionsStore store.TransitionsStore
	HealthStore      store.HealthStore

	srv *http.Server

	// sweepInFlight serializes manual sweeps triggered over HTTP
	sweepInFlight atomic.Bool
}

// NewServer creates the status server.
func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	sw *sweeper.Sweeper,
	sweeps store.SweepsStore,
	transitions store.TransitionsStore,
	health store.HealthStore,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config:           cfg,
		Router:           router,
		DB:               db,
		Sweeper:          sw,
		SweepsStore:      sweeps,
		TransitionsStore: transitions,
		HealthStore:      health,
		srv:              srv,
	}
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// TryBeginSweep attempts to claim the manual-sweep slot. It returns false if
// a sweep is already running.
func (s *Server) TryBeginSweep() bool {
	return s.sweepInFlight.CompareAndSwap(false, true)
}

// EndSweep releases the manual-sweep slot.
func (s *Server) EndSweep() {
	s.sweepInFlight.Store(false)
}
