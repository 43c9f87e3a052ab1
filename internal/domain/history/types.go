package history

import "errors"

var (
	ErrInvalidAction = errors.New("invalid reservation action")
	ErrMissingSlot   = errors.New("history entry requires a slot")
)

type Action string

const (
	ActionMade     Action = "MADE"
	ActionCanceled Action = "CANCELED"
)

func (a Action) String() string {
	return string(a)
}

func (a Action) IsValid() bool {
	switch a {
	case ActionMade, ActionCanceled:
		return true
	default:
		return false
	}
}
