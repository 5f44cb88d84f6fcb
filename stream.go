package call

import (
	"sync"

	"github.com/pion/logging"

	"github.com/gotelepathy/call/pkg/callerr"
)

// Stream is the signaling representation of one media flow between the
// local side and one remote participant within a content. It owns one flow
// machine per direction, the candidate/endpoint store and the stream-level
// credential state.
type Stream struct {
	mu sync.Mutex

	id            uint32
	content       *Content
	remoteContact Handle
	transport     StreamTransportType

	sending   *FlowStateMachine
	receiving *FlowStateMachine
	store     *CandidateStore

	// remoteMembers tracks what each remote participant is doing, distinct
	// from the aggregate receiving machine which reflects what this stream
	// has committed to accept.
	remoteMembers map[Handle]SendingState

	iceRestartPending bool
	resumeOnUnhold    bool
	removed           bool

	log logging.LeveledLogger

	onSendingStateChanged   func(StreamFlowState)
	onReceivingStateChanged func(StreamFlowState)
	onRemoteMembersChanged  func(map[Handle]SendingState)
	onICERestartRequested   func()
}

func newStream(content *Content, id uint32, remoteContact Handle, transport StreamTransportType, locallyRequested bool) *Stream {
	hooks := content.call.engine
	s := &Stream{
		id:            id,
		content:       content,
		remoteContact: remoteContact,
		transport:     transport,
		remoteMembers: map[Handle]SendingState{},
		log:           content.call.loggerFactory.NewLogger("stream"),
	}

	s.sending = NewFlowStateMachine(func(active bool) error {
		if active {
			if hooks.StartSending != nil {
				return hooks.StartSending(s)
			}
			return nil
		}
		if hooks.StopSending != nil {
			return hooks.StopSending(s)
		}
		return nil
	})
	s.receiving = NewFlowStateMachine(func(active bool) error {
		if active {
			if hooks.StartReceiving != nil {
				return hooks.StartReceiving(s)
			}
			return nil
		}
		if hooks.StopReceiving != nil {
			return hooks.StopReceiving(s)
		}
		return nil
	})

	var acceptPolicy func([]Candidate) ([]Candidate, error)
	if hooks.AcceptCandidates != nil {
		acceptPolicy = func(candidates []Candidate) ([]Candidate, error) {
			return hooks.AcceptCandidates(s, candidates)
		}
	}
	var preparedHook func()
	if hooks.CandidatesPrepared != nil {
		preparedHook = func() { hooks.CandidatesPrepared(s) }
	}
	s.store = NewCandidateStore(acceptPolicy, preparedHook)
	if len(content.call.stunServers) > 0 {
		s.store.SetSTUNServers(content.call.stunServers)
	}
	if len(content.call.relayInfo) > 0 {
		s.store.SetRelayInfo(content.call.relayInfo)
	}

	s.sending.OnStateChange(func(state StreamFlowState) {
		content.call.metrics.flowTransition("sending", state)
		s.mu.Lock()
		handler := s.onSendingStateChanged
		s.mu.Unlock()
		if handler != nil {
			handler(state)
		}
	})
	s.receiving.OnStateChange(func(state StreamFlowState) {
		content.call.metrics.flowTransition("receiving", state)
		s.mu.Lock()
		handler := s.onReceivingStateChanged
		s.mu.Unlock()
		if handler != nil {
			handler(state)
		}
	})

	if locallyRequested {
		if err := s.sending.Request(true); err != nil {
			s.log.Warnf("initial sending request failed: %v", err)
		}
	} else if remoteContact != 0 {
		// Incoming proposal: the remote side intends to send, treat it as a
		// bidirectional request.
		s.remoteMembers[remoteContact] = SendingStatePendingSend
		if err := s.receiving.Request(true); err != nil {
			s.log.Warnf("initial receiving request failed: %v", err)
		}
	}
	return s
}

// ID returns the stream id, unique within its content.
func (s *Stream) ID() uint32 { return s.id }

// RemoteContact returns the participant this stream flows to, or zero if
// not yet bound.
func (s *Stream) RemoteContact() Handle { return s.remoteContact }

// Transport returns the negotiated transport kind.
func (s *Stream) Transport() StreamTransportType { return s.transport }

// CandidateStore returns the stream's candidate/endpoint store.
func (s *Stream) CandidateStore() *CandidateStore { return s.store }

// SendingState returns the local-to-remote flow state.
func (s *Stream) SendingState() StreamFlowState { return s.sending.State() }

// ReceivingState returns the remote-to-local flow state.
func (s *Stream) ReceivingState() StreamFlowState { return s.receiving.State() }

// OnSendingStateChanged sets the handler for sending flow transitions.
func (s *Stream) OnSendingStateChanged(f func(StreamFlowState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSendingStateChanged = f
}

// OnReceivingStateChanged sets the handler for receiving flow transitions.
func (s *Stream) OnReceivingStateChanged(f func(StreamFlowState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReceivingStateChanged = f
}

// OnRemoteMembersChanged sets the handler fired when any member's sending
// state changes.
func (s *Stream) OnRemoteMembersChanged(f func(map[Handle]SendingState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemoteMembersChanged = f
}

// OnICERestartRequested sets the handler fired when a restart is requested.
func (s *Stream) OnICERestartRequested(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onICERestartRequested = f
}

// SetSending drives the local sending direction.
func (s *Stream) SetSending(send bool) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	return s.sending.Request(send)
}

// RequestReceiving asks for media from one remote participant to start or
// stop, updating the member map and driving the receiving machine.
func (s *Stream) RequestReceiving(contact Handle, receive bool) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	if err := s.validateContact(contact); err != nil {
		return err
	}

	// When the aggregate machine is already at the wanted state there is no
	// pending commit coming, so the member transitions directly.
	aggregate := s.receiving.State()

	s.mu.Lock()
	old := s.remoteMembers[contact]
	next := old
	if receive {
		if old != SendingStateSending {
			next = SendingStatePendingSend
			if aggregate == StreamFlowStateStarted {
				next = SendingStateSending
			}
		}
	} else {
		if old == SendingStateSending || old == SendingStatePendingSend {
			next = SendingStatePendingStopSending
			if aggregate == StreamFlowStateStopped {
				next = SendingStateNone
			}
		}
	}
	changed := next != old
	if changed {
		s.remoteMembers[contact] = next
	}
	var handler func(map[Handle]SendingState)
	var snapshot map[Handle]SendingState
	if changed {
		handler = s.onRemoteMembersChanged
		snapshot = s.membersSnapshotLocked()
	}
	s.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
	return s.receiving.Request(receive)
}

// CompleteSendingStateChange commits a pending sending transition on behalf
// of the engine.
func (s *Stream) CompleteSendingStateChange(target StreamFlowState) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	return s.sending.Complete(target)
}

// ReportSendingFailure reverts a pending sending transition.
func (s *Stream) ReportSendingFailure(reason CallStateReason) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	if err := s.sending.ReportFailure(); err != nil {
		return err
	}
	s.log.Infof("sending failure reported: %s (%s)", reason.Reason, reason.Message)
	s.content.call.metrics.flowFailure()
	return nil
}

// CompleteReceivingStateChange commits a pending receiving transition. A
// commit to Started also commits pending members to Sending, a commit to
// Stopped clears them.
func (s *Stream) CompleteReceivingStateChange(target StreamFlowState) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	if err := s.receiving.Complete(target); err != nil {
		return err
	}

	s.mu.Lock()
	changed := false
	for contact, state := range s.remoteMembers {
		switch {
		case target == StreamFlowStateStarted && state == SendingStatePendingSend:
			s.remoteMembers[contact] = SendingStateSending
			changed = true
		case target == StreamFlowStateStopped &&
			(state == SendingStateSending || state == SendingStatePendingStopSending):
			s.remoteMembers[contact] = SendingStateNone
			changed = true
		}
	}
	var handler func(map[Handle]SendingState)
	var snapshot map[Handle]SendingState
	if changed {
		handler = s.onRemoteMembersChanged
		snapshot = s.membersSnapshotLocked()
	}
	s.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
	return nil
}

// ReportReceivingFailure reverts a pending receiving transition.
func (s *Stream) ReportReceivingFailure(reason CallStateReason) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	if err := s.receiving.ReportFailure(); err != nil {
		return err
	}
	s.log.Infof("receiving failure reported: %s (%s)", reason.Reason, reason.Message)
	s.content.call.metrics.flowFailure()
	return nil
}

// RemoteMembers returns a copy of the member sending-state map.
func (s *Stream) RemoteMembers() map[Handle]SendingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membersSnapshotLocked()
}

// SetCredentials installs a new credential generation, clearing the local
// candidate list and any pending ICE restart.
func (s *Stream) SetCredentials(username, password string) error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	if err := s.store.SetCredentials(username, password); err != nil {
		return err
	}
	s.clearICERestartPending()
	return nil
}

// GenerateCredentials mints a fresh credential generation.
func (s *Stream) GenerateCredentials() (Credentials, error) {
	if err := s.checkRemoved(); err != nil {
		return Credentials{}, err
	}
	creds, err := s.store.GenerateCredentials()
	if err != nil {
		return Credentials{}, err
	}
	s.clearICERestartPending()
	return creds, nil
}

// AddCandidates runs a local candidate batch through the acceptance policy
// and appends the accepted subset.
func (s *Stream) AddCandidates(candidates []Candidate) ([]Candidate, error) {
	if err := s.checkRemoved(); err != nil {
		return nil, err
	}
	return s.store.AddLocalCandidates(candidates)
}

// FinishInitialCandidates signals the first candidate batch is complete.
func (s *Stream) FinishInitialCandidates() {
	s.store.FinishInitialCandidates()
}

// RequestICERestart flags that new credentials are wanted. The flag holds
// until a new credential generation is set.
func (s *Stream) RequestICERestart() error {
	if err := s.checkRemoved(); err != nil {
		return err
	}
	s.mu.Lock()
	already := s.iceRestartPending
	s.iceRestartPending = true
	handler := s.onICERestartRequested
	s.mu.Unlock()

	if !already && handler != nil {
		handler()
	}
	return nil
}

// ICERestartPending reports whether a restart was requested and no new
// credentials have been set since.
func (s *Stream) ICERestartPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iceRestartPending
}

// Fail removes this stream from its content with the given reason. If this
// was the content's last stream, the call decides the content's fate.
func (s *Stream) Fail(reason CallStateReason) {
	s.content.RemoveStream(s, reason)
}

func (s *Stream) membersSnapshotLocked() map[Handle]SendingState {
	out := make(map[Handle]SendingState, len(s.remoteMembers))
	for contact, state := range s.remoteMembers {
		out[contact] = state
	}
	return out
}

func (s *Stream) validateContact(contact Handle) error {
	if contact == 0 {
		return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
	}
	if resolver := s.content.call.resolver; resolver != nil {
		if _, err := resolver.Inspect(contact); err != nil {
			return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if contact == s.remoteContact {
		return nil
	}
	if _, ok := s.remoteMembers[contact]; ok {
		return nil
	}
	return &callerr.InvalidArgumentError{Err: ErrUnknownContact}
}

func (s *Stream) clearICERestartPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iceRestartPending = false
}

// setHeld pauses local sending for a call-level hold and resumes it on
// unhold if this stream was the one sending.
func (s *Stream) setHeld(held bool) {
	if held {
		state := s.sending.State()
		active := state == StreamFlowStateStarted || state == StreamFlowStatePendingStart
		s.mu.Lock()
		s.resumeOnUnhold = active
		s.mu.Unlock()
		if active {
			if err := s.sending.Request(false); err != nil {
				s.log.Warnf("hold: stop sending failed: %v", err)
			}
		}
		return
	}

	s.mu.Lock()
	resume := s.resumeOnUnhold
	s.resumeOnUnhold = false
	s.mu.Unlock()
	if resume {
		if err := s.sending.Request(true); err != nil {
			s.log.Warnf("unhold: start sending failed: %v", err)
		}
	}
}

func (s *Stream) checkRemoved() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return &callerr.NotAvailableError{Err: ErrStreamRemoved}
	}
	return nil
}

func (s *Stream) markRemoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
}
