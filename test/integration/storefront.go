package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/centricity/ordersync/pkg/brightsites"
)

// fakeOrder is one order held by the fake storefront.
type fakeOrder struct {
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// fakeStorefront emulates the storefront orders API for integration tests.
// Stores are keyed by API token; each configured store gets its own order
// book behind its own token.
type fakeStorefront struct {
	mu     sync.Mutex
	orders map[string][]*fakeOrder // token -> orders
	srv    *httptest.Server
}

func newFakeStorefront() *fakeStorefront {
	f := &fakeStorefront{orders: make(map[string][]*fakeOrder)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeStorefront) URL() string { return f.srv.URL }

func (f *fakeStorefront) Close() { f.srv.Close() }

// tokenFor derives the API token the fake storefront expects for a store.
func tokenFor(subdomain string) string {
	return subdomain + "-token"
}

func (f *fakeStorefront) addOrder(subdomain string, id int64, status, createdAt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := tokenFor(subdomain)
	f.orders[token] = append(f.orders[token], &fakeOrder{
		OrderID:   id,
		Status:    status,
		CreatedAt: createdAt,
	})
}

func (f *fakeStorefront) orderStatus(subdomain string, id int64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders[tokenFor(subdomain)] {
		if o.OrderID == id {
			return o.Status, true
		}
	}
	return "", false
}

func (f *fakeStorefront) handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	f.mu.Lock()
	defer f.mu.Unlock()

	orders, ok := f.orders[token]
	if !ok {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == brightsites.APIPath:
		out := make([]fakeOrder, 0, len(orders))
		for _, o := range orders {
			out = append(out, *o)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"orders":       out,
			"current_page": 1,
			"total_pages":  1,
		})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, brightsites.APIPath+"/"):
		idStr := strings.TrimPrefix(r.URL.Path, brightsites.APIPath+"/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"bad order id"}`, http.StatusBadRequest)
			return
		}

		var payload struct {
			Order struct {
				Status string `json:"status"`
			} `json:"order"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
			return
		}

		for _, o := range orders {
			if o.OrderID == id {
				o.Status = payload.Order.Status
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"order_id":%d,"status":%q}`, id, o.Status)
				return
			}
		}
		http.Error(w, `{"error":"order not found"}`, http.StatusNotFound)

	default:
		http.NotFound(w, r)
	}
}
