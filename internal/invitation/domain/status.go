package domain

import "fmt"

type TriggerKind string

const (
	TriggerCreated        TriggerKind = "created"
	TriggerSignupResolved TriggerKind = "signup_resolved"
	TriggerSendFailed     TriggerKind = "send_failed"
	TriggerSendSucceeded  TriggerKind = "send_succeeded"
)

// Trigger is an event applied to an invitation. HasResolvedUser reports
// whether the invitation is linked to an existing account.
type Trigger struct {
	Kind            TriggerKind
	HasResolvedUser bool
}

// NextStatus returns the status an invitation moves to when trigger is
// applied in state current. The empty status denotes a row not yet created.
func NextStatus(current Status, trigger Trigger) (Status, error) {
	switch trigger.Kind {
	case TriggerCreated:
		if current == "" {
			if trigger.HasResolvedUser {
				return StatusAdded, nil
			}
			return StatusPending, nil
		}
	case TriggerSignupResolved:
		if current == StatusPending {
			return StatusAdded, nil
		}
	case TriggerSendFailed:
		if current.Valid() {
			return StatusFailed, nil
		}
	case TriggerSendSucceeded:
		switch current {
		case StatusPending, StatusAdded:
			return current, nil
		case StatusFailed:
			if trigger.HasResolvedUser {
				return StatusAdded, nil
			}
			return StatusPending, nil
		}
	}
	return current, fmt.Errorf("%w: %s from %q", ErrInvalidTransition, trigger.Kind, current)
}
