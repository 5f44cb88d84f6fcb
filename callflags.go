package call

import "strings"

// CallFlags is a set of independent boolean axes on a call, orthogonal to
// the main call state.
type CallFlags uint32

const (
	// CallFlagLocallyHeld is set while the call is on hold locally.
	CallFlagLocallyHeld CallFlags = 1 << iota

	// CallFlagLocallyRinging is set while the local user is being alerted
	// about an incoming call.
	CallFlagLocallyRinging

	// CallFlagLocallyQueued is set while the call is queued locally.
	CallFlagLocallyQueued

	// CallFlagForwarded is set once the call has been forwarded.
	CallFlagForwarded

	// CallFlagLocallyMuted is set while outgoing media is muted locally.
	CallFlagLocallyMuted
)

// Has reports whether all bits in f2 are set in f.
func (f CallFlags) Has(f2 CallFlags) bool {
	return f&f2 == f2
}

func (f CallFlags) String() string {
	names := []string{}
	if f.Has(CallFlagLocallyHeld) {
		names = append(names, "locally-held")
	}
	if f.Has(CallFlagLocallyRinging) {
		names = append(names, "locally-ringing")
	}
	if f.Has(CallFlagLocallyQueued) {
		names = append(names, "locally-queued")
	}
	if f.Has(CallFlagForwarded) {
		names = append(names, "forwarded")
	}
	if f.Has(CallFlagLocallyMuted) {
		names = append(names, "locally-muted")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// CallMemberFlags describe what a remote participant is doing, as reported
// by the transport boundary.
type CallMemberFlags uint32

const (
	// CallMemberFlagRinging is set while the member's device is alerting.
	CallMemberFlagRinging CallMemberFlags = 1 << iota

	// CallMemberFlagHeld is set while the member has put the call on hold.
	CallMemberFlagHeld
)
