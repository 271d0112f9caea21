package rules

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds      = errors.New("coordinate outside the board")
	ErrOccupied         = errors.New("intersection already occupied")
	ErrSuicide          = errors.New("move would be suicide")
	ErrKoViolation      = errors.New("move repeats a previous board position")
	ErrMalformedHistory = errors.New("move history is inconsistent with the rules")
	ErrInvalidSize      = errors.New("unsupported board size")
	ErrInvalidColor     = errors.New("invalid stone color")
)

// MoveError describes why a move was rejected. Kind is one of the Err*
// sentinels, so callers can match it with errors.Is.
type MoveError struct {
	Kind  error
	Color Color
	Cell  Cell
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Color, e.Cell, e.Kind)
}

func (e *MoveError) Unwrap() error {
	return e.Kind
}

// ReplayError reports the move of a replayed history that could not be
// applied.
type ReplayError struct {
	Index int
	Move  Move
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("move %d: %v", e.Index, e.Err)
}

// Unwrap exposes both ErrMalformedHistory and the underlying rejection.
func (e *ReplayError) Unwrap() []error {
	return []error{ErrMalformedHistory, e.Err}
}
