package call

// CallStateChangeReason enumerates why a call state transition happened.
type CallStateChangeReason int

const (
	// CallStateChangeReasonUnknown means no better reason is known.
	CallStateChangeReasonUnknown CallStateChangeReason = iota

	// CallStateChangeReasonUserRequested covers explicit local or remote
	// user action, including a normal hangup.
	CallStateChangeReasonUserRequested

	// CallStateChangeReasonForwarded indicates the call was forwarded.
	CallStateChangeReasonForwarded

	// CallStateChangeReasonRejected indicates the far side declined.
	CallStateChangeReasonRejected

	// CallStateChangeReasonNoAnswer indicates the call rang out.
	CallStateChangeReasonNoAnswer

	// CallStateChangeReasonInvalidContact indicates the target could not be
	// resolved.
	CallStateChangeReasonInvalidContact

	// CallStateChangeReasonPermissionDenied indicates the call was not
	// allowed.
	CallStateChangeReasonPermissionDenied

	// CallStateChangeReasonBusy indicates the far side was busy.
	CallStateChangeReasonBusy

	// CallStateChangeReasonInternalError indicates a local failure.
	CallStateChangeReasonInternalError

	// CallStateChangeReasonServiceError indicates a service-side failure.
	CallStateChangeReasonServiceError

	// CallStateChangeReasonNetworkError indicates connectivity was lost.
	CallStateChangeReasonNetworkError

	// CallStateChangeReasonMediaError indicates media negotiation failed
	// unrecoverably.
	CallStateChangeReasonMediaError

	// CallStateChangeReasonProgressMade indicates the call advanced a
	// stage, e.g. the far side started ringing.
	CallStateChangeReasonProgressMade

	// CallStateChangeReasonNoStreams indicates a content lost its last
	// stream with no replacement pending.
	CallStateChangeReasonNoStreams
)

func (r CallStateChangeReason) String() string {
	switch r {
	case CallStateChangeReasonUnknown:
		return "unknown"
	case CallStateChangeReasonUserRequested:
		return "user-requested"
	case CallStateChangeReasonForwarded:
		return "forwarded"
	case CallStateChangeReasonRejected:
		return "rejected"
	case CallStateChangeReasonNoAnswer:
		return "no-answer"
	case CallStateChangeReasonInvalidContact:
		return "invalid-contact"
	case CallStateChangeReasonPermissionDenied:
		return "permission-denied"
	case CallStateChangeReasonBusy:
		return "busy"
	case CallStateChangeReasonInternalError:
		return "internal-error"
	case CallStateChangeReasonServiceError:
		return "service-error"
	case CallStateChangeReasonNetworkError:
		return "network-error"
	case CallStateChangeReasonMediaError:
		return "media-error"
	case CallStateChangeReasonProgressMade:
		return "progress-made"
	case CallStateChangeReasonNoStreams:
		return "no-streams"
	default:
		return ErrUnknownType.Error()
	}
}

// CallStateReason is the (actor, reason, protocol reason, message) tuple
// carried by every call state transition. It persists as the call's current
// reason until the next transition.
type CallStateReason struct {
	// Actor is the participant responsible for the transition, or zero if
	// unknown.
	Actor Handle

	// Reason is the machine-readable reason code.
	Reason CallStateChangeReason

	// DBusReason is a protocol-specific error string, empty for success
	// paths.
	DBusReason string

	// Message is free text for humans.
	Message string
}
