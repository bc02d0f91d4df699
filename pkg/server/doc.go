// Package server provides the HTTP status server for ordersync.
//
// The server exposes operational visibility into the sweeper, not the orders
// themselves. It uses gorilla/mux for routing and gorilla/handlers for access
// logging.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, sw, sweeps, transitions, health, host, port)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal().Err(err).Msg("server failed")
//	}
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - GET / - status page (HTML, or JSON via Accept/format)
//   - GET /health - database connectivity
//   - GET /stores - configured stores and key presence
//   - GET /sweeps - recent sweep runs
//   - GET /sweeps/latest - most recent sweep run
//   - GET /transitions - recently applied order transitions
//   - POST /sweeps - trigger a manual sweep (JWT protected)
package server
