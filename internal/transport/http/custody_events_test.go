package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/auth"
	"github.com/joyelle/jewel-custody/internal/domain"
)

type stubVerificationService struct {
	result app.RecordVerificationResult
	err    error

	lastInput app.RecordVerificationInput
}

func (s *stubVerificationService) RecordVerification(ctx context.Context, in app.RecordVerificationInput) (app.RecordVerificationResult, error) {
	s.lastInput = in
	if s.err != nil {
		return app.RecordVerificationResult{}, s.err
	}
	return s.result, nil
}

type stubHistoryService struct {
	events []domain.CustodyEvent
	err    error

	lastFilter app.HistoryFilter
}

func (s *stubHistoryService) History(ctx context.Context, filter app.HistoryFilter) ([]domain.CustodyEvent, error) {
	s.lastFilter = filter
	return s.events, s.err
}

func TestHandleCustodyEvents_Record(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	success := app.RecordVerificationResult{
		Event: domain.CustodyEvent{
			ID: 7, ItemRef: "item-x", Action: domain.ActionStore, Stage: domain.StageIntoVault,
			LockerID: "L-1", Quantity: 6, Result: domain.VerificationMatched,
			ActorRef: "staff-1", RecordedAt: now,
		},
		State: domain.CustodyState{
			ItemRef: "item-x", LockerID: "L-1", InVault: 6,
			LastChecked: domain.LastVerification{Result: domain.VerificationMatched, ActorRef: "staff-1", RecordedAt: now},
			LastEventID: 7,
		},
	}
	validBody := `{"item_ref":"item-x","action":"store","locker_id":"L-1","quantity":6,"result":"matched","actor_ref":"staff-1"}`

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validBody,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"in_vault":6`,
		},
		{
			name:           "invalid json",
			body:           `{"item_ref":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "unknown field",
			body:           `{"item_ref":"item-x","surprise":true}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "invalid action",
			body:           validBody,
			serviceErr:     domain.ErrInvalidAction,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidAction,
		},
		{
			name:           "missing locker",
			body:           validBody,
			serviceErr:     domain.ErrLockerRequired,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeLockerRequired,
		},
		{
			name:           "mismatch without reason",
			body:           validBody,
			serviceErr:     domain.ErrMismatchReasonRequired,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeMismatchReasonRequired,
		},
		{
			name:           "item not found",
			body:           validBody,
			serviceErr:     domain.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   codeItemNotFound,
		},
		{
			name:           "insufficient quantity",
			body:           validBody,
			serviceErr:     domain.ErrInsufficientQuantity,
			expectedStatus: http.StatusConflict,
			expectedCode:   codeInsufficientQuantity,
		},
		{
			name:           "storage unavailable",
			body:           validBody,
			serviceErr:     domain.ErrStorageUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   codeStorageUnavailable,
		},
		{
			name:           "internal error",
			body:           validBody,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   codeInternalError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubVerificationService{result: success, err: tt.serviceErr}
			handler := HandleCustodyEvents(svc, &stubHistoryService{})

			req := httptest.NewRequest(http.MethodPost, "/custody-events", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedCode != "" && !strings.Contains(rec.Body.String(), `"code":"`+tt.expectedCode+`"`) {
				t.Fatalf("expected code %q in body %s", tt.expectedCode, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected %q in body %s", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCustodyEvents_ActorFromContextWins(t *testing.T) {
	t.Parallel()

	svc := &stubVerificationService{}
	handler := HandleCustodyEvents(svc, &stubHistoryService{})

	body := `{"item_ref":"item-x","action":"store","locker_id":"L-1","quantity":1,"result":"matched","actor_ref":"spoofed"}`
	req := httptest.NewRequest(http.MethodPost, "/custody-events", bytes.NewBufferString(body))
	req = req.WithContext(auth.WithActor(req.Context(), "staff-9"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if svc.lastInput.ActorRef != "staff-9" {
		t.Fatalf("expected actor from token, got %q", svc.lastInput.ActorRef)
	}
}

func TestHandleCustodyEvents_History(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []domain.CustodyEvent{
		{ID: 2, ItemRef: "item-x", Action: domain.ActionTakeToShowcase, Stage: domain.StageOutOfVault, LockerID: "L-1", Quantity: 4, Result: domain.VerificationMatched, ActorRef: "staff-1", RecordedAt: now},
	}

	t.Run("maps showcase tab to workflow filter", func(t *testing.T) {
		svc := &stubHistoryService{events: events}
		handler := HandleCustodyEvents(&stubVerificationService{}, svc)

		req := httptest.NewRequest(http.MethodGet, "/custody-events?stage=Showcase&limit=10&offset=5", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if svc.lastFilter.Action == nil || *svc.lastFilter.Action != domain.ActionTakeToShowcase {
			t.Fatalf("expected showcase filter, got %v", svc.lastFilter.Action)
		}
		if svc.lastFilter.Limit != 10 || svc.lastFilter.Offset != 5 {
			t.Fatalf("expected limit 10 offset 5, got %d/%d", svc.lastFilter.Limit, svc.lastFilter.Offset)
		}

		var resp []eventResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 1 || resp[0].ID != 2 {
			t.Fatalf("expected event 2, got %v", resp)
		}
	})

	t.Run("all stages by default", func(t *testing.T) {
		svc := &stubHistoryService{}
		handler := HandleCustodyEvents(&stubVerificationService{}, svc)

		req := httptest.NewRequest(http.MethodGet, "/custody-events", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.lastFilter.Action != nil {
			t.Fatalf("expected no workflow filter, got %v", *svc.lastFilter.Action)
		}
	})

	t.Run("rejects unknown stage", func(t *testing.T) {
		handler := HandleCustodyEvents(&stubVerificationService{}, &stubHistoryService{})

		req := httptest.NewRequest(http.MethodGet, "/custody-events?stage=melting", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), codeInvalidStage) {
			t.Fatalf("expected invalid_stage code, got %s", rec.Body.String())
		}
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		handler := HandleCustodyEvents(&stubVerificationService{}, &stubHistoryService{})

		req := httptest.NewRequest(http.MethodGet, "/custody-events?limit=zero", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleCustodyEvents_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	handler := HandleCustodyEvents(&stubVerificationService{}, &stubHistoryService{})
	req := httptest.NewRequest(http.MethodDelete, "/custody-events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
