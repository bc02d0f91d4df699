package endpoints

import (
	"github.com/centricity/ordersync/pkg/server"
)

// RegisterAll registers all status server endpoints
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterHealthEndpoint(srv)
	RegisterStoresEndpoints(srv)
	RegisterSweepsEndpoints(srv)
	RegisterTransitionsEndpoints(srv)
}
