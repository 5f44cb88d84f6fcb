package call

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/pion/logging"

	"github.com/gotelepathy/call/pkg/callerr"
)

// The fsm states are the CallState string forms from callstate.go.
const (
	callFSMEventRing   = "ring"
	callFSMEventAccept = "accept"
	callFSMEventEnd    = "end"
)

// Call owns the contents of one communication session, the call-level state
// machine and the hold and mute state. It is the only component allowed to
// delete a Content.
type Call struct {
	mu sync.Mutex

	id      string
	machine *fsm.FSM

	stateReason CallStateReason
	flags       CallFlags
	holdState   LocalHoldState
	muted       bool

	contents      []*Content
	nextContentID uint32

	members map[Handle]CallMemberFlags

	engine        EngineHooks
	resolver      HandleResolver
	loggerFactory logging.LoggerFactory
	metrics       *Metrics
	stunServers   []STUNServer
	relayInfo     []RelayInfo

	log logging.LeveledLogger

	onStateChanged     func(CallState, CallStateReason)
	onFlagsChanged     func(CallFlags)
	onHoldStateChanged func(LocalHoldState)
	onMuteChanged      func(bool)
	onContentAdded     func(*Content)
	onContentRemoved   func(*Content, CallStateReason)
	onMembersChanged   func(map[Handle]CallMemberFlags)
}

func newCall(config CallConfig, settings *SettingEngine, metrics *Metrics) *Call {
	initial := callStatePendingReceiverStr
	if config.LocallyRequested {
		initial = callStatePendingInitiatorStr
	}

	c := &Call{
		id:            uuid.NewString(),
		nextContentID: 1,
		members:       map[Handle]CallMemberFlags{},
		engine:        settings.engine,
		resolver:      settings.resolver,
		loggerFactory: settings.LoggerFactory,
		metrics:       metrics,
		stunServers:   append([]STUNServer(nil), settings.stunServers...),
		relayInfo:     append([]RelayInfo(nil), settings.relayInfo...),
		log:           settings.LoggerFactory.NewLogger("call"),
	}
	c.machine = fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: callFSMEventRing, Src: []string{callStatePendingInitiatorStr, callStatePendingReceiverStr}, Dst: callStateRingingStr},
			{Name: callFSMEventAccept, Src: []string{callStatePendingInitiatorStr, callStatePendingReceiverStr, callStateRingingStr}, Dst: callStateAcceptedStr},
			{Name: callFSMEventEnd, Src: []string{callStatePendingInitiatorStr, callStatePendingReceiverStr, callStateRingingStr, callStateAcceptedStr}, Dst: callStateEndedStr},
		},
		fsm.Callbacks{},
	)
	metrics.callStarted()

	if config.InitialAudio {
		name := config.InitialAudioName
		if name == "" {
			name = "audio"
		}
		c.addContentInternal(name, MediaTypeAudio, ContentDispositionInitial)
	}
	if config.InitialVideo {
		name := config.InitialVideoName
		if name == "" {
			name = "video"
		}
		c.addContentInternal(name, MediaTypeVideo, ContentDispositionInitial)
	}
	return c
}

// ID returns the call's opaque identifier.
func (c *Call) ID() string { return c.id }

// State returns the current call state.
func (c *Call) State() CallState {
	return newCallState(c.machine.Current())
}

// StateReason returns the reason recorded with the last state transition.
func (c *Call) StateReason() CallStateReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateReason
}

// Ended reports whether the call has reached its terminal state.
func (c *Call) Ended() bool {
	return c.machine.Current() == callStateEndedStr
}

// Flags returns the current call flags.
func (c *Call) Flags() CallFlags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// HoldState returns the local hold state.
func (c *Call) HoldState() LocalHoldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holdState
}

// Muted returns the local mute state.
func (c *Call) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// OnStateChanged sets the handler fired on call state transitions.
func (c *Call) OnStateChanged(f func(CallState, CallStateReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChanged = f
}

// OnFlagsChanged sets the handler fired when the call flags change.
func (c *Call) OnFlagsChanged(f func(CallFlags)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFlagsChanged = f
}

// OnHoldStateChanged sets the handler fired on hold state transitions.
func (c *Call) OnHoldStateChanged(f func(LocalHoldState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHoldStateChanged = f
}

// OnMuteChanged sets the handler fired when the mute state flips.
func (c *Call) OnMuteChanged(f func(bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMuteChanged = f
}

// OnContentAdded sets the handler fired when a content is added.
func (c *Call) OnContentAdded(f func(*Content)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onContentAdded = f
}

// OnContentRemoved sets the handler fired when a content is removed.
func (c *Call) OnContentRemoved(f func(*Content, CallStateReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onContentRemoved = f
}

// OnMembersChanged sets the handler fired when the member flag map changes.
func (c *Call) OnMembersChanged(f func(map[Handle]CallMemberFlags)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMembersChanged = f
}

// transition fires an fsm event and records the reason. The state-changed
// handler is invoked outside the call lock.
func (c *Call) transition(event string, reason CallStateReason) error {
	if err := c.machine.Event(context.Background(), event); err != nil {
		return err
	}
	state := c.State()
	c.metrics.callStateChanged(state)

	c.mu.Lock()
	c.stateReason = reason
	handler := c.onStateChanged
	c.mu.Unlock()

	if handler != nil {
		handler(state, reason)
	}
	return nil
}

// SetRinging marks an incoming call as ringing locally, raising the
// LocallyRinging flag.
func (c *Call) SetRinging() error {
	if c.machine.Current() != callStatePendingReceiverStr {
		return &callerr.NotAvailableError{Err: ErrCallNotAnswerable}
	}
	c.setFlag(CallFlagLocallyRinging, true)
	return c.transition(callFSMEventRing, CallStateReason{Reason: CallStateChangeReasonProgressMade})
}

// SetRemoteRinging marks an outgoing call as ringing at the far end.
func (c *Call) SetRemoteRinging(actor Handle) error {
	if c.machine.Current() != callStatePendingInitiatorStr {
		return &callerr.NotAvailableError{Err: ErrCallNotAnswerable}
	}
	return c.transition(callFSMEventRing, CallStateReason{Actor: actor, Reason: CallStateChangeReasonProgressMade})
}

// SetQueued raises or clears the LocallyQueued flag while the call is still
// pending.
func (c *Call) SetQueued(queued bool) error {
	state := c.machine.Current()
	if state != callStatePendingInitiatorStr && state != callStatePendingReceiverStr {
		return &callerr.NotAvailableError{Err: ErrCallNotAnswerable}
	}
	c.setFlag(CallFlagLocallyQueued, queued)
	return nil
}

// SetForwarded raises the Forwarded flag.
func (c *Call) SetForwarded() {
	c.setFlag(CallFlagForwarded, true)
}

// Accept answers the call locally. Valid only from PendingReceiver or
// Ringing; repeating it is an error, not a no-op.
func (c *Call) Accept() error {
	state := c.machine.Current()
	if state != callStatePendingReceiverStr && state != callStateRingingStr {
		if state == callStateEndedStr {
			return &callerr.NotAvailableError{Err: ErrCallEnded}
		}
		return &callerr.NotAvailableError{Err: ErrCallNotAnswerable}
	}
	c.setFlag(CallFlagLocallyRinging|CallFlagLocallyQueued, false)
	return c.transition(callFSMEventAccept, CallStateReason{Reason: CallStateChangeReasonUserRequested})
}

// RemoteAccept records the far end answering an outgoing call.
func (c *Call) RemoteAccept(actor Handle) error {
	state := c.machine.Current()
	if state != callStatePendingInitiatorStr && state != callStateRingingStr {
		if state == callStateEndedStr {
			return &callerr.NotAvailableError{Err: ErrCallEnded}
		}
		return &callerr.NotAvailableError{Err: ErrCallNotAnswerable}
	}
	return c.transition(callFSMEventAccept, CallStateReason{Actor: actor, Reason: CallStateChangeReasonUserRequested})
}

// Hangup ends the call from any non-Ended state and tears down every
// content's negotiation queue. Contents stay readable afterwards but accept
// no further mutation.
func (c *Call) Hangup(actor Handle, reason CallStateChangeReason, dbusReason, message string) error {
	return c.end(CallStateReason{Actor: actor, Reason: reason, DBusReason: dbusReason, Message: message})
}

func (c *Call) end(reason CallStateReason) error {
	if c.Ended() {
		return &callerr.NotAvailableError{Err: ErrCallEnded}
	}

	c.mu.Lock()
	contents := append([]*Content(nil), c.contents...)
	c.mu.Unlock()

	if err := c.transition(callFSMEventEnd, reason); err != nil {
		return &callerr.NotAvailableError{Err: ErrCallEnded}
	}
	c.metrics.callEnded(reason.Reason)

	// Teardown after the Ended transition so cancellation callbacks observe
	// the terminal state and no removal events fire.
	for _, content := range contents {
		content.teardown()
		c.metrics.contentRemoved(content.MediaType())
	}
	return nil
}

// AddContent creates and registers a content of the given media type.
func (c *Call) AddContent(name string, mediaType MediaType) (*Content, error) {
	state := c.machine.Current()
	if state == callStateEndedStr {
		return nil, &callerr.NotAvailableError{Err: ErrCallEnded}
	}

	disposition := ContentDispositionNone
	if state == callStatePendingInitiatorStr || state == callStatePendingReceiverStr {
		disposition = ContentDispositionInitial
	}
	return c.addContentInternal(name, mediaType, disposition), nil
}

func (c *Call) addContentInternal(name string, mediaType MediaType, disposition ContentDisposition) *Content {
	c.mu.Lock()
	id := c.nextContentID
	c.nextContentID++
	c.mu.Unlock()

	content := newContent(c, id, name, mediaType, disposition)

	c.mu.Lock()
	c.contents = append(c.contents, content)
	handler := c.onContentAdded
	c.mu.Unlock()

	c.metrics.contentAdded(mediaType)
	if handler != nil {
		handler(content)
	}
	return content
}

// RemoveContent removes a content from the call. Removing the last content
// ends the call with the triggering reason.
func (c *Call) RemoveContent(content *Content, reason CallStateReason) {
	ended := c.Ended()

	c.mu.Lock()
	found := false
	for i, existing := range c.contents {
		if existing == content {
			c.contents = append(c.contents[:i], c.contents[i+1:]...)
			found = true
			break
		}
	}
	empty := len(c.contents) == 0
	handler := c.onContentRemoved
	c.mu.Unlock()

	if !found {
		return
	}
	content.teardown()
	if ended {
		return
	}
	c.metrics.contentRemoved(content.MediaType())
	if handler != nil {
		handler(content, reason)
	}
	if empty {
		if err := c.end(reason); err != nil {
			c.log.Warnf("ending call after last content: %v", err)
		}
	}
}

// contentLostLastStream is the Call's arbitration point for a content whose
// last stream was removed: the content is dead and removed. If the call has
// already ended the removal is implicit and silent.
func (c *Call) contentLostLastStream(content *Content, reason CallStateReason) {
	if c.Ended() {
		content.teardown()
		return
	}
	c.RemoveContent(content, reason)
}

// Contents returns a copy of the content list.
func (c *Call) Contents() []*Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Content(nil), c.contents...)
}

// Content returns the content with the given id.
func (c *Call) Content(id uint32) (*Content, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, content := range c.contents {
		if content.id == id {
			return content, true
		}
	}
	return nil, false
}

// RequestHold drives the call-level hold state towards held or unheld. The
// engine confirms through CompleteHoldStateChange; with no hold hook the
// request completes synchronously.
func (c *Call) RequestHold(hold bool) error {
	if c.Ended() {
		return &callerr.NotAvailableError{Err: ErrCallEnded}
	}

	c.mu.Lock()
	current := c.holdState
	var next LocalHoldState
	if hold {
		if current == LocalHoldStateHeld || current == LocalHoldStatePendingHold {
			c.mu.Unlock()
			return nil
		}
		next = LocalHoldStatePendingHold
	} else {
		if current == LocalHoldStateUnheld || current == LocalHoldStatePendingUnhold {
			c.mu.Unlock()
			return nil
		}
		next = LocalHoldStatePendingUnhold
	}
	hook := c.engine.RequestHold
	c.mu.Unlock()

	if hook != nil {
		if err := hook(c, hold); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.holdState = next
	handler := c.onHoldStateChanged
	c.mu.Unlock()

	if handler != nil {
		handler(next)
	}
	if hook == nil {
		target := LocalHoldStateHeld
		if !hold {
			target = LocalHoldStateUnheld
		}
		return c.CompleteHoldStateChange(target)
	}
	return nil
}

// CompleteHoldStateChange commits a pending hold transition on behalf of the
// engine: PendingHold to Held, PendingUnhold to Unheld. Committing to Held
// pauses local sending on every stream; committing to Unheld resumes the
// streams that were sending when the hold began.
func (c *Call) CompleteHoldStateChange(target LocalHoldState) error {
	c.mu.Lock()
	legal := (target == LocalHoldStateHeld && c.holdState == LocalHoldStatePendingHold) ||
		(target == LocalHoldStateUnheld && c.holdState == LocalHoldStatePendingUnhold)
	if !legal {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrHoldNotPending}
	}
	c.holdState = target
	handler := c.onHoldStateChanged
	contents := append([]*Content(nil), c.contents...)
	c.mu.Unlock()

	held := target == LocalHoldStateHeld
	for _, content := range contents {
		for _, s := range content.Streams() {
			s.setHeld(held)
		}
	}
	c.setFlag(CallFlagLocallyHeld, held)

	if handler != nil {
		handler(target)
	}
	return nil
}

// ReportHoldFailure reverts a pending hold transition: PendingHold back to
// Unheld, PendingUnhold back to Held.
func (c *Call) ReportHoldFailure(reason CallStateReason) error {
	c.mu.Lock()
	var reverted LocalHoldState
	switch c.holdState {
	case LocalHoldStatePendingHold:
		reverted = LocalHoldStateUnheld
	case LocalHoldStatePendingUnhold:
		reverted = LocalHoldStateHeld
	default:
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrHoldNotPending}
	}
	c.holdState = reverted
	handler := c.onHoldStateChanged
	c.mu.Unlock()

	c.log.Infof("hold failure reported: %s (%s)", reason.Reason, reason.Message)
	if handler != nil {
		handler(reverted)
	}
	return nil
}

// SetMuted flips the local mute state. Mute has no pending phase; the engine
// boundary treats it as synchronous.
func (c *Call) SetMuted(muted bool) {
	c.mu.Lock()
	if c.muted == muted {
		c.mu.Unlock()
		return
	}
	c.muted = muted
	handler := c.onMuteChanged
	c.mu.Unlock()

	c.setFlag(CallFlagLocallyMuted, muted)
	if handler != nil {
		handler(muted)
	}
}

// UpdateMember installs or updates a remote member's flags.
func (c *Call) UpdateMember(contact Handle, flags CallMemberFlags) error {
	if contact == 0 {
		return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
	}
	if c.resolver != nil {
		if _, err := c.resolver.Inspect(contact); err != nil {
			return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
		}
	}

	c.mu.Lock()
	old, existed := c.members[contact]
	if existed && old == flags {
		c.mu.Unlock()
		return nil
	}
	c.members[contact] = flags
	handler := c.onMembersChanged
	snapshot := c.membersSnapshotLocked()
	c.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
	return nil
}

// RemoveMember drops a remote member from the call.
func (c *Call) RemoveMember(contact Handle) error {
	c.mu.Lock()
	if _, ok := c.members[contact]; !ok {
		c.mu.Unlock()
		return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
	}
	delete(c.members, contact)
	handler := c.onMembersChanged
	snapshot := c.membersSnapshotLocked()
	c.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
	return nil
}

// Members returns a copy of the member flag map.
func (c *Call) Members() map[Handle]CallMemberFlags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.membersSnapshotLocked()
}

func (c *Call) membersSnapshotLocked() map[Handle]CallMemberFlags {
	out := make(map[Handle]CallMemberFlags, len(c.members))
	for contact, flags := range c.members {
		out[contact] = flags
	}
	return out
}

func (c *Call) setFlag(flag CallFlags, on bool) {
	c.mu.Lock()
	old := c.flags
	if on {
		c.flags |= flag
	} else {
		c.flags &^= flag
	}
	changed := c.flags != old
	flags := c.flags
	handler := c.onFlagsChanged
	c.mu.Unlock()

	if changed && handler != nil {
		handler(flags)
	}
}
