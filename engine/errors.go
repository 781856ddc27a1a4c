package engine

import "fmt"

// ValidationError reports bad input (too few teams, missing identifiers).
// Never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// SequencingError reports an attempt to simulate a round while an
// earlier round in the same scope still has unplayed fixtures.
type SequencingError struct {
	Round    int
	Unplayed int
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("cannot simulate round %d: %d unplayed fixture(s) in earlier rounds", e.Round, e.Unplayed)
}

// StateConflictError reports an attempt to simulate a fixture that is
// already marked played. Surfaced as a warning, never applied, so
// standings are never corrupted.
type StateConflictError struct {
	FixtureID string
}

func (e *StateConflictError) Error() string {
	return "fixture already played: " + e.FixtureID
}

// DependencyError wraps a store read/write failure. The orchestrator
// aborts the affected fixture and reports partial completion; retry
// policy belongs to the caller.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("store failure in %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
