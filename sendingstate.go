package call

// SendingState tracks what a single participant is doing with one media
// flow: the remote-member map on a stream and the DTMF machinery on a
// content both use it.
type SendingState int

const (
	// SendingStateNone indicates nothing is being sent and nothing was
	// asked for.
	SendingStateNone SendingState = iota

	// SendingStatePendingSend indicates sending was requested but has not
	// started.
	SendingStatePendingSend

	// SendingStateSending indicates media is flowing.
	SendingStateSending

	// SendingStatePendingStopSending indicates a stop was requested but
	// media may still be flowing.
	SendingStatePendingStopSending
)

func (s SendingState) String() string {
	switch s {
	case SendingStateNone:
		return "none"
	case SendingStatePendingSend:
		return "pending-send"
	case SendingStateSending:
		return "sending"
	case SendingStatePendingStopSending:
		return "pending-stop-sending"
	default:
		return ErrUnknownType.Error()
	}
}
