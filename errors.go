package call

import (
	"errors"
)

// ErrUnknownType is returned by enum String methods and raw-string
// constructors when the value has no known mapping.
var ErrUnknownType = errors.New("unknown")

// Causes wrapped in callerr.NotAvailableError.
var (
	ErrCallEnded          = errors.New("call already ended")
	ErrCallNotAnswerable  = errors.New("call cannot be accepted in its current state")
	ErrContentRemoved     = errors.New("content has been removed")
	ErrStreamRemoved      = errors.New("stream has been removed")
	ErrOfferOutstanding   = errors.New("a media description offer is outstanding")
	ErrOfferNotCurrent    = errors.New("media description is not the current offer")
	ErrNoLocalDescription = errors.New("no local media description for contact")
	ErrNotPending         = errors.New("no pending flow state change to recover from")
	ErrHoldNotPending     = errors.New("no pending hold state change")
	ErrToneInProgress     = errors.New("a DTMF tone is already in progress")
	ErrNoToneInProgress   = errors.New("no DTMF tone in progress")
)

// Causes wrapped in callerr.InvalidArgumentError.
var (
	ErrCodecsEmpty           = errors.New("codec list must not be empty")
	ErrRemoteContactMismatch = errors.New("remote contact does not match the description target")
	ErrNoRemoteInformation   = errors.New("description carries no remote information to reject")
	ErrUnknownContact        = errors.New("contact is not a member of this stream")
	ErrNotSTUNScheme         = errors.New("URI scheme is not stun or stuns")
	ErrNotTURNScheme         = errors.New("URI scheme is not turn or turns")
	ErrNoTURNCredentials     = errors.New("turn server credentials required")
	ErrCredentialsEmpty      = errors.New("credentials must not be empty")
)

// Causes wrapped in callerr.InvalidTransitionError.
var (
	ErrFlowStateNotReachable = errors.New("flow state is not reachable from the pending state")
	ErrDTMFStateNotReachable = errors.New("dtmf state is not reachable from the pending state")
)

// Causes wrapped in callerr.NotImplementedError.
var (
	ErrNoCandidatePolicy = errors.New("no candidate acceptance policy configured")
)

// Causes wrapped in callerr.AlreadyResolvedError and callerr.CancelledError.
var (
	ErrDescriptionResolved = errors.New("media description already resolved")
	ErrDescriptionTornDown = errors.New("owning object torn down before resolution")
)
