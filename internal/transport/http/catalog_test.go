package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/domain"
)

type stubCatalogService struct {
	item  domain.CatalogItem
	items []domain.CatalogItem
	err   error
}

func (s *stubCatalogService) CreateItem(ctx context.Context, in app.CreateItemInput) (domain.CatalogItem, error) {
	if s.err != nil {
		return domain.CatalogItem{}, s.err
	}
	return s.item, nil
}

func (s *stubCatalogService) GetItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	if s.err != nil {
		return domain.CatalogItem{}, s.err
	}
	return s.item, nil
}

func (s *stubCatalogService) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.items, s.err
}

func TestHandleCatalogItems(t *testing.T) {
	t.Parallel()

	ring := domain.CatalogItem{ID: "item-1", Name: "Sapphire Ring", Type: "ring", TotalQuantity: 10}

	t.Run("create", func(t *testing.T) {
		handler := HandleCatalogItems(&stubCatalogService{item: ring})

		body := `{"name":"Sapphire Ring","type":"ring","total_quantity":10}`
		req := httptest.NewRequest(http.MethodPost, "/catalog-items", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"id":"item-1"`) {
			t.Fatalf("expected created item in body, got %s", rec.Body.String())
		}
	})

	t.Run("create without name", func(t *testing.T) {
		handler := HandleCatalogItems(&stubCatalogService{err: domain.ErrItemNameRequired})

		req := httptest.NewRequest(http.MethodPost, "/catalog-items", bytes.NewBufferString(`{"total_quantity":5}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), codeItemNameRequired) {
			t.Fatalf("expected item_name_required, got %s", rec.Body.String())
		}
	})

	t.Run("list", func(t *testing.T) {
		handler := HandleCatalogItems(&stubCatalogService{items: []domain.CatalogItem{ring}})

		req := httptest.NewRequest(http.MethodGet, "/catalog-items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"name":"Sapphire Ring"`) {
			t.Fatalf("expected listing, got %s", rec.Body.String())
		}
	})

	t.Run("get by id not found", func(t *testing.T) {
		handler := HandleCatalogItem(&stubCatalogService{err: domain.ErrItemNotFound})

		req := httptest.NewRequest(http.MethodGet, "/catalog-items/missing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
