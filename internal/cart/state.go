package cart

import (
	"errors"
	"fmt"
)

// LineState tracks where a line is in the local/remote reconciliation.
type LineState string

const (
	StatePendingCreate LineState = "pendingCreate"
	StateSynced        LineState = "synced"
	StatePendingDelete LineState = "pendingDelete"
	StateDeleted       LineState = "deleted"
)

var ErrInvalidTransition = errors.New("invalid line state transition")

var transitions = map[LineState][]LineState{
	StatePendingCreate: {StateSynced, StateDeleted},
	StateSynced:        {StatePendingDelete, StateDeleted},
	StatePendingDelete: {StateDeleted, StateSynced},
}

func (s LineState) CanTransition(to LineState) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s LineState) IsTerminal() bool {
	return s == StateDeleted
}

func (it *Item) transition(to LineState) error {
	if !it.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s (item %s)", ErrInvalidTransition, it.State, to, it.ID)
	}
	it.State = to
	return nil
}
