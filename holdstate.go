package call

// LocalHoldState indicates where the local hold machinery is, mirroring the
// request/pending/confirmed pattern of the stream flow machines.
type LocalHoldState int

const (
	// LocalHoldStateUnheld indicates the call is not on hold.
	LocalHoldStateUnheld LocalHoldState = iota

	// LocalHoldStateHeld indicates the engine has confirmed the hold.
	LocalHoldStateHeld

	// LocalHoldStatePendingHold indicates a hold was requested and the
	// engine has not yet confirmed it.
	LocalHoldStatePendingHold

	// LocalHoldStatePendingUnhold indicates an unhold was requested and the
	// engine has not yet confirmed it.
	LocalHoldStatePendingUnhold
)

func (s LocalHoldState) String() string {
	switch s {
	case LocalHoldStateUnheld:
		return "unheld"
	case LocalHoldStateHeld:
		return "held"
	case LocalHoldStatePendingHold:
		return "pending-hold"
	case LocalHoldStatePendingUnhold:
		return "pending-unhold"
	default:
		return ErrUnknownType.Error()
	}
}
