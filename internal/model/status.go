package model

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports a rejected status change. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %q to %q", e.Entity, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type transitions[S ~string] map[S][]S

func (t transitions[S]) check(entity string, from, to S) error {
	for _, next := range t[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{Entity: entity, From: string(from), To: string(to)}
}

func (t transitions[S]) next(from S) []S {
	return append([]S(nil), t[from]...)
}
