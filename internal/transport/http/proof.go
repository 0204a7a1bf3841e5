package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// ProofPresigner hands out upload targets for proof photographs.
type ProofPresigner interface {
	PresignUpload(ctx context.Context) (key string, url string, err error)
}

// HandleProofUploads serves POST /proof-uploads: it returns the opaque
// proof_ref to record on the event plus a presigned URL to PUT the photo to.
func HandleProofUploads(store ProofPresigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		key, url, err := store.PresignUpload(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "proof storage unavailable")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(proofUploadResponse{
			ProofRef:  key,
			UploadURL: url,
		})
	}
}

type proofUploadResponse struct {
	ProofRef  string `json:"proof_ref"`
	UploadURL string `json:"upload_url"`
}
