package endpoints

import (
	"net/http"
	"os"
	"strings"

	"github.com/centricity/ordersync/pkg/server"
)

// RegisterStatusEndpoints registers the status page
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("ORDERSYNC_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		// Check if JSON is requested via Accept header or format query param
		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			respondWithJSON(w, http.StatusOK, map[string]string{"version": version})
			return
		}

		html := `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">
    <title>ordersync Status</title>
  </head>
  <body>
    <main>
      <h1>Status</h1>
      <p>Your ordersync server is running!</p>
      <dl>
        <dt>Version</dt>
        <dd>` + version + `</dd>
      </dl>
      <p>
        See <a href="/sweeps/latest">/sweeps/latest</a> for the most recent
        sweep and <a href="/stores">/stores</a> for the configured stores.
      </p>
    </main>
  </body>
</html>
`

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}
