package web

import (
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/application/orchestrators"
)

// handleBeacon handles POST /api/beacons
// Fire-and-forget usage beacons. The user ID comes from the session, never
// from the client payload, and a beacon can never affect access decisions.
func handleBeacon(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Kind       string `json:"kind"`
		Path       string `json:"path"`
		DeviceHash string `json:"deviceHash"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID := ""
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		userID = sess.UserID
	}

	if err := orchestrators.ExecuteRecordBeacon(r.Context(), orchestrators.RecordBeaconInput{
		Kind:       req.Kind,
		Path:       req.Path,
		DeviceHash: req.DeviceHash,
		UserID:     userID,
	}, orchestrators.RecordBeaconDeps{
		Beacons: stores.BeaconStore,
		Outbox:  stores.OutboxStore,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
