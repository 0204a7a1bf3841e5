package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joyelle/jewel-custody/internal/app"
	"github.com/joyelle/jewel-custody/internal/domain"
)

// EventRepository is the durable append-only custody log plus the item-row
// lock the write path serializes on.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetItemForUpdate resolves the catalog item and takes a row lock on it for
// the duration of the surrounding transaction. The lock is what serializes
// concurrent appends for the same item.
func (r *EventRepository) GetItemForUpdate(ctx context.Context, itemRef string) (domain.CatalogItem, error) {
	const query = `SELECT id, name, type, total_quantity FROM catalog_items WHERE id = $1 FOR UPDATE`
	var item domain.CatalogItem
	err := r.queryRow(ctx, query, itemRef).Scan(&item.ID, &item.Name, &item.Type, &item.TotalQuantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CatalogItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.CatalogItem{}, domain.ErrItemNotFound
		}
		return domain.CatalogItem{}, wrapStorageErr("get item for update", err)
	}
	return item, nil
}

// AppendEvent durably appends one event and returns its assigned id. Only
// structural well-formedness is checked here; business rules belong to the
// verification service.
func (r *EventRepository) AppendEvent(ctx context.Context, event domain.CustodyEvent) (int64, error) {
	if err := validateEvent(event); err != nil {
		return 0, err
	}

	const stmt = `
INSERT INTO custody_events (item_ref, action, stage, locker_id, quantity, result, mismatch_reason, notes, proof_ref, actor_ref, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`

	var id int64
	err := r.queryRow(ctx, stmt,
		event.ItemRef,
		event.Action,
		event.Stage,
		event.LockerID,
		event.Quantity,
		event.Result,
		event.MismatchReason,
		event.Notes,
		event.ProofRef,
		event.ActorRef,
		event.RecordedAt,
	).Scan(&id)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return 0, domain.ErrItemNotFound
		}
		return 0, wrapStorageErr("append event", err)
	}
	return id, nil
}

func validateEvent(event domain.CustodyEvent) error {
	if event.ItemRef == "" {
		return domain.ErrInvalidID
	}
	if !event.Action.Valid() {
		return domain.ErrInvalidAction
	}
	if event.LockerID == "" {
		return domain.ErrLockerRequired
	}
	if event.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !event.Result.Valid() {
		return domain.ErrInvalidResult
	}
	if event.Result == domain.VerificationMismatch && event.MismatchReason == "" {
		return domain.ErrMismatchReasonRequired
	}
	if event.ActorRef == "" {
		return domain.ErrActorRequired
	}
	return nil
}

const eventColumns = `id, item_ref, action, stage, locker_id, quantity, result, mismatch_reason, notes, proof_ref, actor_ref, recorded_at`

// ListAllEvents returns the full log oldest first, the replay order for
// state reconstruction.
func (r *EventRepository) ListAllEvents(ctx context.Context) ([]domain.CustodyEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM custody_events ORDER BY recorded_at ASC, id ASC`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, wrapStorageErr("list all events", err)
	}
	return scanEvents(rows)
}

// ListEventsByItem returns one item's log oldest first.
func (r *EventRepository) ListEventsByItem(ctx context.Context, itemRef string) ([]domain.CustodyEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM custody_events WHERE item_ref = $1 ORDER BY recorded_at ASC, id ASC`
	rows, err := r.query(ctx, query, itemRef)
	if err != nil {
		return nil, wrapStorageErr("list events by item", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, err
	}
	return events, nil
}

// ListEvents returns the filtered audit view newest first.
func (r *EventRepository) ListEvents(ctx context.Context, filter app.HistoryFilter) ([]domain.CustodyEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM custody_events`
	var (
		conds []string
		args  []any
	)
	if filter.Action != nil {
		args = append(args, *filter.Action)
		conds = append(conds, `action = $`+strconv.Itoa(len(args)))
	}
	if filter.ItemRef != "" {
		args = append(args, filter.ItemRef)
		conds = append(conds, `item_ref = $`+strconv.Itoa(len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY recorded_at DESC, id DESC`
	args = append(args, filter.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, wrapStorageErr("list events", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, err
	}
	return events, nil
}

func scanEvents(rows pgx.Rows) ([]domain.CustodyEvent, error) {
	defer rows.Close()

	var events []domain.CustodyEvent
	for rows.Next() {
		var event domain.CustodyEvent
		if err := rows.Scan(
			&event.ID,
			&event.ItemRef,
			&event.Action,
			&event.Stage,
			&event.LockerID,
			&event.Quantity,
			&event.Result,
			&event.MismatchReason,
			&event.Notes,
			&event.ProofRef,
			&event.ActorRef,
			&event.RecordedAt,
		); err != nil {
			return nil, wrapStorageErr("scan event", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, wrapStorageErr("iterate events", rows.Err())
	}
	return events, nil
}

func (r *EventRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *EventRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
