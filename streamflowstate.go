package call

// StreamFlowState is the per-direction flow-control state of a stream. One
// instance of the automaton exists for the sending direction and one for the
// receiving direction.
type StreamFlowState int

const (
	// StreamFlowStateStopped indicates no media is flowing. Initial state.
	StreamFlowStateStopped StreamFlowState = iota

	// StreamFlowStatePendingStart indicates the engine was asked to start
	// and has not yet confirmed.
	StreamFlowStatePendingStart

	// StreamFlowStateStarted indicates the engine confirmed media is
	// flowing.
	StreamFlowStateStarted

	// StreamFlowStatePendingStop indicates the engine was asked to stop and
	// has not yet confirmed.
	StreamFlowStatePendingStop

	// StreamFlowStatePendingPause indicates the engine initiated a pause
	// and has not yet confirmed it. No local API drives this directly.
	StreamFlowStatePendingPause

	// StreamFlowStatePaused indicates the engine confirmed the pause.
	StreamFlowStatePaused
)

const (
	streamFlowStateStoppedStr      = "stopped"
	streamFlowStatePendingStartStr = "pending-start"
	streamFlowStateStartedStr      = "started"
	streamFlowStatePendingStopStr  = "pending-stop"
	streamFlowStatePendingPauseStr = "pending-pause"
	streamFlowStatePausedStr       = "paused"
)

// NewStreamFlowState builds a StreamFlowState from its canonical string.
func NewStreamFlowState(raw string) (StreamFlowState, error) {
	switch raw {
	case streamFlowStateStoppedStr:
		return StreamFlowStateStopped, nil
	case streamFlowStatePendingStartStr:
		return StreamFlowStatePendingStart, nil
	case streamFlowStateStartedStr:
		return StreamFlowStateStarted, nil
	case streamFlowStatePendingStopStr:
		return StreamFlowStatePendingStop, nil
	case streamFlowStatePendingPauseStr:
		return StreamFlowStatePendingPause, nil
	case streamFlowStatePausedStr:
		return StreamFlowStatePaused, nil
	default:
		return StreamFlowState(0), ErrUnknownType
	}
}

func (s StreamFlowState) String() string {
	switch s {
	case StreamFlowStateStopped:
		return streamFlowStateStoppedStr
	case StreamFlowStatePendingStart:
		return streamFlowStatePendingStartStr
	case StreamFlowStateStarted:
		return streamFlowStateStartedStr
	case StreamFlowStatePendingStop:
		return streamFlowStatePendingStopStr
	case StreamFlowStatePendingPause:
		return streamFlowStatePendingPauseStr
	case StreamFlowStatePaused:
		return streamFlowStatePausedStr
	default:
		return ErrUnknownType.Error()
	}
}
