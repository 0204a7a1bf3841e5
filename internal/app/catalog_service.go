package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/joyelle/jewel-custody/internal/domain"
)

type CatalogRepository interface {
	CreateItem(ctx context.Context, item domain.CatalogItem) error
	GetItem(ctx context.Context, id string) (domain.CatalogItem, error)
	ListItems(ctx context.Context) ([]domain.CatalogItem, error)
}

// CatalogService is the minimal master-record facade the ledger validates
// against. The full jewelry catalog lives elsewhere; this only manages
// identity, type and the authoritative total quantity.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

type CreateItemInput struct {
	Name          string
	Type          string
	TotalQuantity int
}

func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (domain.CatalogItem, error) {
	if in.Name == "" {
		return domain.CatalogItem{}, domain.ErrItemNameRequired
	}
	if in.TotalQuantity <= 0 {
		return domain.CatalogItem{}, domain.ErrInvalidQuantity
	}

	item := domain.CatalogItem{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Type:          in.Type,
		TotalQuantity: in.TotalQuantity,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.CatalogItem{}, err
	}
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	if id == "" {
		return domain.CatalogItem{}, domain.ErrInvalidID
	}
	return s.repo.GetItem(ctx, id)
}

func (s *CatalogService) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.repo.ListItems(ctx)
}
