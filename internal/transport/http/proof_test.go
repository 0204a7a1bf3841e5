package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPresigner struct {
	key string
	url string
	err error
}

func (s *stubPresigner) PresignUpload(ctx context.Context) (string, string, error) {
	return s.key, s.url, s.err
}

func TestHandleProofUploads(t *testing.T) {
	t.Parallel()

	t.Run("returns ref and upload url", func(t *testing.T) {
		handler := HandleProofUploads(&stubPresigner{
			key: "proofs/2025/03/01/abc",
			url: "https://bucket.example/proofs/2025/03/01/abc?sig=x",
		})

		req := httptest.NewRequest(http.MethodPost, "/proof-uploads", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp proofUploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ProofRef != "proofs/2025/03/01/abc" || resp.UploadURL == "" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("presign failure is 503", func(t *testing.T) {
		handler := HandleProofUploads(&stubPresigner{err: errors.New("s3 down")})

		req := httptest.NewRequest(http.MethodPost, "/proof-uploads", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		handler := HandleProofUploads(&stubPresigner{})

		req := httptest.NewRequest(http.MethodGet, "/proof-uploads", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
