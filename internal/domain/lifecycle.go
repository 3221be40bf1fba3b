package domain

import "time"

type Action string

const (
	ActionCreate   Action = "create"
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// CancellationNotice is the minimum gap between a student cancellation and the
// lesson start.
const CancellationNotice = 24 * time.Hour

// NextStatus evaluates the transition guards for action performed by actorID
// acting as role at instant now. Guards run in a fixed order: ownership, source
// state, then wall-clock rules. Overlap re-checks for confirm are the caller's
// job since they need the store.
func NextStatus(a Appointment, action Action, actorID string, role Role, now time.Time) (AppointmentStatus, error) {
	if !a.OwnedBy(actorID, role) {
		return "", Forbidden("you are not a party to this appointment")
	}
	if a.Status.Terminal() {
		return "", Conflict("appointment can no longer be changed")
	}

	switch action {
	case ActionConfirm, ActionReject:
		if role != RoleInstructor {
			return "", Forbidden("only the instructor can " + string(action) + " an appointment")
		}
		if a.Status != StatusPending {
			return "", Conflict("only pending appointments can be " + pastTense(action))
		}
		if action == ActionConfirm {
			return StatusConfirmed, nil
		}
		return StatusCancelledByProfessor, nil

	case ActionComplete:
		if role != RoleInstructor {
			return "", Forbidden("only the instructor can complete an appointment")
		}
		if a.Status != StatusConfirmed {
			return "", Conflict("only confirmed appointments can be completed")
		}
		if a.EndTime.After(now) {
			return "", Unprocessable("the lesson has not finished yet")
		}
		return StatusCompleted, nil

	case ActionCancel:
		if role == RoleStudent {
			if a.StartTime.Sub(now) < CancellationNotice {
				return "", Unprocessable("cancellations must be made at least 24 hours in advance")
			}
			return StatusCancelledByUser, nil
		}
		if a.Status != StatusConfirmed {
			return "", Conflict("only confirmed appointments can be cancelled by the instructor")
		}
		return StatusCancelledByProfessor, nil
	}

	return "", Unprocessable("unknown action " + string(action))
}

func pastTense(a Action) string {
	switch a {
	case ActionConfirm:
		return "confirmed"
	case ActionReject:
		return "rejected"
	case ActionCancel:
		return "cancelled"
	case ActionComplete:
		return "completed"
	default:
		return string(a) + "ed"
	}
}
