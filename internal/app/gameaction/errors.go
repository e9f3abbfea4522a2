package gameaction

import (
	"errors"
	"fmt"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

var (
	ErrInvalidState      = errors.New("invalid game state for action")
	ErrProtocolViolation = errors.New("simulator protocol violation")
	ErrGameNotFound      = errors.New("game not found")
)

// ActionExecutionError is what callers see for any failed submission. It
// keeps the action and the committed map it was attempted against.
type ActionExecutionError struct {
	Action action.Action
	Map    board.MapData
	Err    error
}

func (e *ActionExecutionError) Error() string {
	name := "<nil>"
	if e.Action != nil {
		name = e.Action.ActionType().String()
	}
	return fmt.Sprintf("execute %s: %v", name, e.Err)
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Err
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func protocolViolation(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProtocolViolation, stage, err)
}
