package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/auth"
	"github.com/joyelle/jewel-custody/internal/domain"
)

// VerificationRecorder is the minimal interface needed to record a custody
// verification.
type VerificationRecorder interface {
	RecordVerification(ctx context.Context, in app.RecordVerificationInput) (app.RecordVerificationResult, error)
}

// HistoryLister is the minimal interface needed to serve the audit view.
type HistoryLister interface {
	History(ctx context.Context, filter app.HistoryFilter) ([]domain.CustodyEvent, error)
}

// HandleCustodyEvents serves POST (record a verification) and GET (filtered
// history, newest first) on /custody-events.
func HandleCustodyEvents(recorder VerificationRecorder, lister HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleRecordVerification(recorder, w, r)
		case http.MethodGet:
			handleHistory(lister, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleRecordVerification(svc VerificationRecorder, w http.ResponseWriter, r *http.Request) {
	var req createCustodyEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	// The authenticated session wins over the request body; the body's
	// actor_ref is accepted only when no token middleware is configured.
	actorRef := auth.ActorFromContext(r.Context())
	if actorRef == "" {
		actorRef = req.ActorRef
	}

	result, err := svc.RecordVerification(r.Context(), app.RecordVerificationInput{
		ItemRef:        req.ItemRef,
		Action:         domain.WorkflowAction(req.Action),
		LockerID:       req.LockerID,
		Quantity:       req.Quantity,
		Result:         domain.VerificationResult(req.Result),
		MismatchReason: req.MismatchReason,
		Notes:          req.Notes,
		ProofRef:       req.ProofRef,
		ActorRef:       actorRef,
	})
	if err != nil {
		writeVerificationError(w, err)
		return
	}

	resp := createCustodyEventResponse{
		Event:        toEventResponse(result.Event),
		CurrentState: toStateResponse(result.State),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, codeInvalidAction, err.Error())
	case errors.Is(err, domain.ErrInvalidResult):
		writeError(w, http.StatusBadRequest, codeInvalidResult, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrLockerRequired):
		writeError(w, http.StatusBadRequest, codeLockerRequired, err.Error())
	case errors.Is(err, domain.ErrActorRequired):
		writeError(w, http.StatusBadRequest, codeActorRequired, err.Error())
	case errors.Is(err, domain.ErrMismatchReasonRequired):
		writeError(w, http.StatusBadRequest, codeMismatchReasonRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientQuantity):
		writeError(w, http.StatusConflict, codeInsufficientQuantity, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func handleHistory(svc HistoryLister, w http.ResponseWriter, r *http.Request) {
	filter := app.HistoryFilter{ItemRef: r.URL.Query().Get("item")}

	action, ok := parseStageParam(r.URL.Query().Get("stage"))
	if !ok {
		writeError(w, http.StatusBadRequest, codeInvalidStage, "invalid stage")
		return
	}
	filter.Action = action

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid offset")
			return
		}
		filter.Offset = n
	}

	events, err := svc.History(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		case errors.Is(err, domain.ErrStorageUnavailable):
			writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// parseStageParam maps the audit-view tab names onto a workflow filter. The
// second return is false for an unknown value.
func parseStageParam(raw string) (*domain.WorkflowAction, bool) {
	switch strings.ToLower(raw) {
	case "", "all":
		return nil, true
	case "store":
		action := domain.ActionStore
		return &action, true
	case "showcase":
		action := domain.ActionTakeToShowcase
		return &action, true
	case "return":
		action := domain.ActionReturn
		return &action, true
	default:
		return nil, false
	}
}

type createCustodyEventRequest struct {
	ItemRef        string `json:"item_ref"`
	Action         string `json:"action"`
	LockerID       string `json:"locker_id"`
	Quantity       int    `json:"quantity"`
	Result         string `json:"result"`
	MismatchReason string `json:"mismatch_reason,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ProofRef       string `json:"proof_ref,omitempty"`
	ActorRef       string `json:"actor_ref,omitempty"`
}

type createCustodyEventResponse struct {
	Event        eventResponse `json:"event"`
	CurrentState stateResponse `json:"current_state"`
}

type eventResponse struct {
	ID             int64     `json:"id"`
	ItemRef        string    `json:"item_ref"`
	Action         string    `json:"action"`
	Stage          string    `json:"stage"`
	LockerID       string    `json:"locker_id"`
	Quantity       int       `json:"quantity"`
	Result         string    `json:"result"`
	MismatchReason string    `json:"mismatch_reason,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ProofRef       string    `json:"proof_ref,omitempty"`
	ActorRef       string    `json:"actor_ref"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func toEventResponse(event domain.CustodyEvent) eventResponse {
	return eventResponse{
		ID:             event.ID,
		ItemRef:        event.ItemRef,
		Action:         string(event.Action),
		Stage:          string(event.Stage),
		LockerID:       event.LockerID,
		Quantity:       event.Quantity,
		Result:         string(event.Result),
		MismatchReason: event.MismatchReason,
		Notes:          event.Notes,
		ProofRef:       event.ProofRef,
		ActorRef:       event.ActorRef,
		RecordedAt:     event.RecordedAt,
	}
}
