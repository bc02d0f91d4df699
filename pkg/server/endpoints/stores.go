package endpoints

import (
	"net/http"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/server"
)

// StoreInfo describes one configured store. The key itself never leaves the
// process; only whether the named variable resolves.
type StoreInfo struct {
	Subdomain  string `json:"subdomain"`
	APIKeyEnv  string `json:"api_key_env"`
	KeyPresent bool   `json:"key_present"`
}

// StoresResponse represents the response from /stores
type StoresResponse struct {
	APIDomain string      `json:"api_domain"`
	Stores    []StoreInfo `json:"stores"`
}

// RegisterStoresEndpoints registers the stores endpoints
func RegisterStoresEndpoints(s *server.Server) {
	s.Router.HandleFunc("/stores", handleStores(s.Config)).Methods("GET")
}

func handleStores(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := make([]StoreInfo, len(cfg.Stores))
		for i, st := range cfg.Stores {
			infos[i] = StoreInfo{
				Subdomain:  st.Subdomain,
				APIKeyEnv:  st.APIKeyEnv,
				KeyPresent: st.APIKey() != "",
			}
		}

		respondWithJSON(w, http.StatusOK, StoresResponse{
			APIDomain: cfg.APIDomain,
			Stores:    infos,
		})
	}
}
