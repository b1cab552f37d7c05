// Package statushandler serves the live state of the running scan as JSON.
package statushandler

import (
	"encoding/json"
	"net/http"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/engine"
)

// SnapshotProvider exposes the current run state.
type SnapshotProvider interface {
	Snapshot() engine.Snapshot
}

// New returns a handler that answers GET requests with the provider's
// current snapshot.
func New(provider SnapshotProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)

			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(provider.Snapshot())
	})
}
