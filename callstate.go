package call

// CallState indicates where a call is in its overall lifecycle.
type CallState int

const (
	// CallStatePendingInitiator indicates a locally requested call that has
	// not yet been delivered to the remote side.
	CallStatePendingInitiator CallState = iota + 1

	// CallStatePendingReceiver indicates a remotely requested call that has
	// not yet been answered locally.
	CallStatePendingReceiver

	// CallStateRinging indicates the far side (outgoing) or the local user
	// (incoming) has acknowledged the call and is being alerted.
	CallStateRinging

	// CallStateAccepted indicates one side has accepted and media
	// negotiation may proceed.
	CallStateAccepted

	// CallStateEnded is terminal. No further content or stream mutation is
	// observable after it, except draining already-queued callbacks.
	CallStateEnded
)

// This is done this way because of a linter.
const (
	callStatePendingInitiatorStr = "pending-initiator"
	callStatePendingReceiverStr  = "pending-receiver"
	callStateRingingStr          = "ringing"
	callStateAcceptedStr         = "accepted"
	callStateEndedStr            = "ended"
)

func newCallState(raw string) CallState {
	switch raw {
	case callStatePendingInitiatorStr:
		return CallStatePendingInitiator
	case callStatePendingReceiverStr:
		return CallStatePendingReceiver
	case callStateRingingStr:
		return CallStateRinging
	case callStateAcceptedStr:
		return CallStateAccepted
	case callStateEndedStr:
		return CallStateEnded
	default:
		return CallState(0)
	}
}

func (s CallState) String() string {
	switch s {
	case CallStatePendingInitiator:
		return callStatePendingInitiatorStr
	case CallStatePendingReceiver:
		return callStatePendingReceiverStr
	case CallStateRinging:
		return callStateRingingStr
	case CallStateAccepted:
		return callStateAcceptedStr
	case CallStateEnded:
		return callStateEndedStr
	default:
		return ErrUnknownType.Error()
	}
}
