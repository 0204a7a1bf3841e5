// Package ledger derives current custody state from the append-only event
// log. The fold is pure and deterministic: replaying the same log always
// yields the same states, and applying one event incrementally is equivalent
// to a full replay of the extended log.
package ledger

import (
	"sort"

	"github.com/joyelle/jewel-custody/internal/domain"
)

// Apply folds a single event into the state for its item and returns the
// updated state. Derived quantities are floored at zero: a log imported from
// an older system may contain withdrawals without a matching prior store,
// and replay tolerates those rather than erroring. The write path rejects
// new events that would underflow, so floors only ever trigger on legacy
// data.
func Apply(state domain.CustodyState, event domain.CustodyEvent) domain.CustodyState {
	if state.ItemRef == "" {
		state.ItemRef = event.ItemRef
	}

	switch event.Stage {
	case domain.StageIntoVault:
		state.InVault += event.Quantity
		state.OutOfVault = floor(state.OutOfVault - event.Quantity)
		state.LockerID = event.LockerID
	case domain.StageOutOfVault:
		state.InVault = floor(state.InVault - event.Quantity)
		state.OutOfVault += event.Quantity
	}

	state.LastChecked = domain.LastVerification{
		Result:     event.Result,
		ActorRef:   event.ActorRef,
		RecordedAt: event.RecordedAt,
	}
	state.LastEventID = event.ID
	return state
}

// Reconstruct replays the full log into per-item custody states. Events are
// processed oldest first, ordered by recorded time with ties broken by id,
// regardless of the order they arrive in.
func Reconstruct(events []domain.CustodyEvent) map[string]domain.CustodyState {
	ordered := make([]domain.CustodyEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].RecordedAt.Equal(ordered[j].RecordedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].RecordedAt.Before(ordered[j].RecordedAt)
	})

	states := make(map[string]domain.CustodyState)
	for _, event := range ordered {
		states[event.ItemRef] = Apply(states[event.ItemRef], event)
	}
	return states
}

// ReconstructItem replays the log for a single item. Events for other items
// are ignored, so callers may pass either a pre-filtered or a full log.
func ReconstructItem(itemRef string, events []domain.CustodyEvent) domain.CustodyState {
	filtered := make([]domain.CustodyEvent, 0, len(events))
	for _, event := range events {
		if event.ItemRef == itemRef {
			filtered = append(filtered, event)
		}
	}
	state, ok := Reconstruct(filtered)[itemRef]
	if !ok {
		return domain.CustodyState{ItemRef: itemRef}
	}
	return state
}

func floor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
