package app

import (
	"context"

	"github.com/joyelle/jewel-custody/internal/clock"
	"github.com/joyelle/jewel-custody/internal/domain"
	"github.com/joyelle/jewel-custody/internal/ledger"
)

// VerificationRepository is the storage surface the write path needs. All
// methods are expected to run inside the transaction opened by WithTx so
// that validation and append see a single consistent view.
type VerificationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, itemRef string) (domain.CatalogItem, error)
	ListEventsByItem(ctx context.Context, itemRef string) ([]domain.CustodyEvent, error)
	AppendEvent(ctx context.Context, event domain.CustodyEvent) (int64, error)
}

// VerificationService is the write path of the custody ledger: it validates
// a staff verification action against the catalog and the current
// reconstructed state, then appends exactly one event.
type VerificationService struct {
	repo  VerificationRepository
	clock clock.Clock
}

func NewVerificationService(repo VerificationRepository, clk clock.Clock) *VerificationService {
	return &VerificationService{
		repo:  repo,
		clock: clk,
	}
}

type RecordVerificationInput struct {
	ItemRef        string
	Action         domain.WorkflowAction
	LockerID       string
	Quantity       int
	Result         domain.VerificationResult
	MismatchReason string
	Notes          string
	ProofRef       string
	ActorRef       string
}

type RecordVerificationResult struct {
	Event domain.CustodyEvent
	State domain.CustodyState
}

// RecordVerification validates and appends one custody event. Validation and
// append run in a single transaction holding a row lock on the catalog item,
// so two concurrent actions on the same item cannot both pass the in-vault
// quantity check against a stale state. On any failure nothing is appended.
func (s *VerificationService) RecordVerification(ctx context.Context, in RecordVerificationInput) (RecordVerificationResult, error) {
	stage, err := in.Action.Stage()
	if err != nil {
		return RecordVerificationResult{}, err
	}
	if !in.Result.Valid() {
		return RecordVerificationResult{}, domain.ErrInvalidResult
	}
	if in.ActorRef == "" {
		return RecordVerificationResult{}, domain.ErrActorRequired
	}

	now := s.clock.Now()
	var result RecordVerificationResult

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.repo.GetItemForUpdate(txCtx, in.ItemRef)
		if err != nil {
			return err
		}
		if in.LockerID == "" {
			return domain.ErrLockerRequired
		}
		if in.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if in.Result == domain.VerificationMismatch && in.MismatchReason == "" {
			return domain.ErrMismatchReasonRequired
		}
		if in.Quantity > item.TotalQuantity {
			return domain.ErrInsufficientQuantity
		}

		history, err := s.repo.ListEventsByItem(txCtx, in.ItemRef)
		if err != nil {
			return err
		}
		current := ledger.ReconstructItem(in.ItemRef, history)

		if stage == domain.StageOutOfVault && in.Quantity > current.InVault {
			return domain.ErrInsufficientQuantity
		}
		// An intake may not push the vault past the catalog total; since an
		// into-vault event first absorbs any showcased units, this bounds
		// the total tracked units (vault plus showcase) by the catalog
		// quantity at every point in the log.
		if stage == domain.StageIntoVault && current.InVault+in.Quantity > item.TotalQuantity {
			return domain.ErrInsufficientQuantity
		}

		event := domain.CustodyEvent{
			ItemRef:        in.ItemRef,
			Action:         in.Action,
			Stage:          stage,
			LockerID:       in.LockerID,
			Quantity:       in.Quantity,
			Result:         in.Result,
			MismatchReason: in.MismatchReason,
			Notes:          in.Notes,
			ProofRef:       in.ProofRef,
			ActorRef:       in.ActorRef,
			RecordedAt:     now,
		}

		id, err := s.repo.AppendEvent(txCtx, event)
		if err != nil {
			return err
		}
		event.ID = id

		result = RecordVerificationResult{
			Event: event,
			State: ledger.Apply(current, event),
		}
		return nil
	})
	if err != nil {
		return RecordVerificationResult{}, err
	}
	return result, nil
}
