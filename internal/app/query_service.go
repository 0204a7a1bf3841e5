package app

import (
	"context"

	"github.com/joyelle/jewel-custody/internal/domain"
	"github.com/joyelle/jewel-custody/internal/ledger"
)

// HistoryFilter narrows the audit view. A nil Action means all workflows.
type HistoryFilter struct {
	Action  *domain.WorkflowAction
	ItemRef string
	Limit   int
	Offset  int
}

const defaultHistoryLimit = 100

type QueryRepository interface {
	ListAllEvents(ctx context.Context) ([]domain.CustodyEvent, error)
	ListEventsByItem(ctx context.Context, itemRef string) ([]domain.CustodyEvent, error)
	ListEvents(ctx context.Context, filter HistoryFilter) ([]domain.CustodyEvent, error)
}

// Snapshot is the full current custody picture: per-item state plus the
// aggregate unit counts shown on the dashboard.
type Snapshot struct {
	Items           map[string]domain.CustodyState
	TotalInVault    int
	TotalInShowcase int
}

// QueryService serves the read-only projections. It has no state of its
// own; every answer is derived from the log at call time.
type QueryService struct {
	repo QueryRepository
}

func NewQueryService(repo QueryRepository) *QueryService {
	return &QueryService{repo: repo}
}

// CurrentSnapshot replays the full log into the per-item states and sums
// the in-vault and in-showcase unit totals.
func (s *QueryService) CurrentSnapshot(ctx context.Context) (Snapshot, error) {
	events, err := s.repo.ListAllEvents(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Items: ledger.Reconstruct(events)}
	for _, state := range snap.Items {
		snap.TotalInVault += state.InVault
		snap.TotalInShowcase += state.OutOfVault
	}
	return snap, nil
}

// ItemState returns the current custody state for one item. An item with no
// events yields a zero state rather than an error; whether the item exists
// at all is the catalog's question, not the ledger's.
func (s *QueryService) ItemState(ctx context.Context, itemRef string) (domain.CustodyState, error) {
	if itemRef == "" {
		return domain.CustodyState{}, domain.ErrInvalidID
	}
	events, err := s.repo.ListEventsByItem(ctx, itemRef)
	if err != nil {
		return domain.CustodyState{}, err
	}
	return ledger.ReconstructItem(itemRef, events), nil
}

// History lists events newest first for the audit view.
func (s *QueryService) History(ctx context.Context, filter HistoryFilter) ([]domain.CustodyEvent, error) {
	if filter.Action != nil && !filter.Action.Valid() {
		return nil, domain.ErrInvalidAction
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListEvents(ctx, filter)
}
