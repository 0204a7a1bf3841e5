package domain

import "time"

// Stage is the physical direction of a custody movement.
type Stage string

const (
	StageIntoVault  Stage = "into_vault"
	StageOutOfVault Stage = "out_of_vault"
)

// WorkflowAction is the staff-facing verification workflow. Three actions
// collapse onto two physical stages: Store and Return both put units back
// into the vault, TakeToShowcase takes them out.
type WorkflowAction string

const (
	ActionStore          WorkflowAction = "store"
	ActionTakeToShowcase WorkflowAction = "take_to_showcase"
	ActionReturn         WorkflowAction = "return"
)

// Stage maps the workflow action onto its physical direction.
func (a WorkflowAction) Stage() (Stage, error) {
	switch a {
	case ActionStore, ActionReturn:
		return StageIntoVault, nil
	case ActionTakeToShowcase:
		return StageOutOfVault, nil
	default:
		return "", ErrInvalidAction
	}
}

// Valid reports whether a is one of the three known workflow actions.
func (a WorkflowAction) Valid() bool {
	_, err := a.Stage()
	return err == nil
}

type VerificationResult string

const (
	VerificationMatched  VerificationResult = "matched"
	VerificationMismatch VerificationResult = "mismatch"
)

func (v VerificationResult) Valid() bool {
	return v == VerificationMatched || v == VerificationMismatch
}

// CustodyEvent is one immutable record of an item moving between the vault
// and the showcase. Events are only ever appended; corrections are new
// compensating events.
type CustodyEvent struct {
	ID             int64
	ItemRef        string
	Action         WorkflowAction
	Stage          Stage
	LockerID       string
	Quantity       int
	Result         VerificationResult
	MismatchReason string
	Notes          string
	ProofRef       string
	ActorRef       string
	RecordedAt     time.Time
}

// LastVerification is the outcome of the most recent physical check of an
// item, carried on the derived state for display.
type LastVerification struct {
	Result     VerificationResult
	ActorRef   string
	RecordedAt time.Time
}

// CustodyState is the derived, disposable projection of an item's current
// custody. It is never persisted as authoritative data; it can always be
// rebuilt from the event log.
type CustodyState struct {
	ItemRef     string
	LockerID    string
	InVault     int
	OutOfVault  int
	LastChecked LastVerification
	LastEventID int64
}
