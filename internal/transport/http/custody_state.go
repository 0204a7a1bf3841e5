package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/domain"
)

// StateReader is the minimal interface needed to serve custody snapshots.
type StateReader interface {
	CurrentSnapshot(ctx context.Context) (app.Snapshot, error)
	ItemState(ctx context.Context, itemRef string) (domain.CustodyState, error)
}

// HandleCustodyState serves GET /custody-state (full snapshot) and
// GET /custody-state/{itemRef} (single item).
func HandleCustodyState(svc StateReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		itemRef := strings.Trim(strings.TrimPrefix(r.URL.Path, "/custody-state"), "/")
		if itemRef == "" {
			handleSnapshot(svc, w, r)
			return
		}
		if strings.Contains(itemRef, "/") {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		handleItemState(svc, w, r, itemRef)
	}
}

func handleSnapshot(svc StateReader, w http.ResponseWriter, r *http.Request) {
	snap, err := svc.CurrentSnapshot(r.Context())
	if err != nil {
		writeStateError(w, err)
		return
	}

	resp := snapshotResponse{
		Items:           make(map[string]stateResponse, len(snap.Items)),
		TotalInVault:    snap.TotalInVault,
		TotalInShowcase: snap.TotalInShowcase,
	}
	for itemRef, state := range snap.Items {
		resp.Items[itemRef] = toStateResponse(state)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleItemState(svc StateReader, w http.ResponseWriter, r *http.Request, itemRef string) {
	state, err := svc.ItemState(r.Context(), itemRef)
	if err != nil {
		writeStateError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toStateResponse(state))
}

func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type snapshotResponse struct {
	Items           map[string]stateResponse `json:"items"`
	TotalInVault    int                      `json:"total_in_vault"`
	TotalInShowcase int                      `json:"total_in_showcase"`
}

type stateResponse struct {
	ItemRef          string                    `json:"item_ref"`
	LockerID         string                    `json:"locker_id,omitempty"`
	InVault          int                       `json:"in_vault"`
	OutOfVault       int                       `json:"out_of_vault"`
	LastVerification *lastVerificationResponse `json:"last_verification,omitempty"`
	LastEventID      int64                     `json:"last_event_id,omitempty"`
}

type lastVerificationResponse struct {
	Result     string    `json:"result"`
	ActorRef   string    `json:"actor_ref"`
	RecordedAt time.Time `json:"recorded_at"`
}

func toStateResponse(state domain.CustodyState) stateResponse {
	resp := stateResponse{
		ItemRef:     state.ItemRef,
		LockerID:    state.LockerID,
		InVault:     state.InVault,
		OutOfVault:  state.OutOfVault,
		LastEventID: state.LastEventID,
	}
	if state.LastChecked.Result != "" {
		resp.LastVerification = &lastVerificationResponse{
			Result:     string(state.LastChecked.Result),
			ActorRef:   state.LastChecked.ActorRef,
			RecordedAt: state.LastChecked.RecordedAt,
		}
	}
	return resp
}
