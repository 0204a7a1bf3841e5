package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/domain"
)

// CatalogAdminService is the minimal interface needed for the catalog
// master-record endpoints.
type CatalogAdminService interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.CatalogItem, error)
	GetItem(ctx context.Context, id string) (domain.CatalogItem, error)
	ListItems(ctx context.Context) ([]domain.CatalogItem, error)
}

// HandleCatalogItems serves POST and GET on /catalog-items.
func HandleCatalogItems(svc CatalogAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := svc.ListItems(r.Context())
			if err != nil {
				writeCatalogError(w, err)
				return
			}
			resp := make([]catalogItemResponse, 0, len(items))
			for _, item := range items {
				resp = append(resp, toCatalogItemResponse(item))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPost:
			var req createCatalogItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			item, err := svc.CreateItem(r.Context(), app.CreateItemInput{
				Name:          req.Name,
				Type:          req.Type,
				TotalQuantity: req.TotalQuantity,
			})
			if err != nil {
				writeCatalogError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toCatalogItemResponse(item))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleCatalogItem serves GET /catalog-items/{id}.
func HandleCatalogItem(svc CatalogAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/catalog-items"), "/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toCatalogItemResponse(item))
	}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNameRequired):
		writeError(w, http.StatusBadRequest, codeItemNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case errors.Is(err, domain.ErrItemAlreadyExists):
		writeError(w, http.StatusConflict, codeItemAlreadyExists, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createCatalogItemRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	TotalQuantity int    `json:"total_quantity"`
}

type catalogItemResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	TotalQuantity int    `json:"total_quantity"`
}

func toCatalogItemResponse(item domain.CatalogItem) catalogItemResponse {
	return catalogItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Type:          item.Type,
		TotalQuantity: item.TotalQuantity,
	}
}
