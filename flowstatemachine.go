package call

import (
	"sync"

	"github.com/gotelepathy/call/pkg/callerr"
)

// FlowDriver delivers a start (active=true) or stop intent to the external
// media engine. A synchronous error means the ask itself failed and leaves
// the machine untouched; asynchronous confirmation arrives later through
// Complete.
type FlowDriver func(active bool) error

// FlowStateMachine is the flow-control automaton for one direction of one
// stream. It is created Stopped and destroyed with its stream.
//
// State-change notifications are delivered outside the machine's lock, in
// the same total order as the transitions that produced them: transitions
// queue their notification and a single drainer delivers the queue in FIFO
// order. Handlers may call back into the machine.
type FlowStateMachine struct {
	mu sync.Mutex

	state    StreamFlowState
	driver   FlowDriver
	onChange func(StreamFlowState)

	notifications []StreamFlowState
	draining      bool
}

// NewFlowStateMachine creates a machine in StreamFlowStateStopped. driver
// may be nil, in which case intents are considered delivered.
func NewFlowStateMachine(driver FlowDriver) *FlowStateMachine {
	return &FlowStateMachine{state: StreamFlowStateStopped, driver: driver}
}

// OnStateChange sets the handler fired on every successful transition,
// exactly once per transition.
func (m *FlowStateMachine) OnStateChange(f func(StreamFlowState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = f
}

// State returns the current flow state.
func (m *FlowStateMachine) State() StreamFlowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Request asks for the direction to become active or inactive. Requests that
// are already satisfied, or already pending in the wanted direction, are
// no-ops.
func (m *FlowStateMachine) Request(active bool) error {
	m.mu.Lock()
	if active {
		if m.state == StreamFlowStatePendingStart || m.state == StreamFlowStateStarted {
			m.mu.Unlock()
			return nil
		}
		if err := m.drive(true); err != nil {
			m.mu.Unlock()
			return err
		}
		m.transition(StreamFlowStatePendingStart)
	} else {
		if m.state == StreamFlowStateStopped || m.state == StreamFlowStatePendingStop {
			m.mu.Unlock()
			return nil
		}
		if err := m.drive(false); err != nil {
			m.mu.Unlock()
			return err
		}
		m.transition(StreamFlowStatePendingStop)
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

// RequestPause is the engine-initiated suspend path. It is only reachable
// from Started; no local API drives it.
func (m *FlowStateMachine) RequestPause() error {
	m.mu.Lock()
	if m.state != StreamFlowStateStarted {
		m.mu.Unlock()
		return &callerr.InvalidTransitionError{Err: ErrFlowStateNotReachable}
	}
	m.transition(StreamFlowStatePendingPause)
	m.mu.Unlock()

	m.notify()
	return nil
}

// Complete commits a pending transition on behalf of the engine. The only
// legal commits are PendingStart->Started, PendingStop->Stopped and
// PendingPause->Paused; anything else leaves the state unchanged.
func (m *FlowStateMachine) Complete(target StreamFlowState) error {
	m.mu.Lock()
	legal := false
	switch target {
	case StreamFlowStateStarted:
		legal = m.state == StreamFlowStatePendingStart
	case StreamFlowStateStopped:
		legal = m.state == StreamFlowStatePendingStop
	case StreamFlowStatePaused:
		legal = m.state == StreamFlowStatePendingPause
	}
	if !legal {
		m.mu.Unlock()
		return &callerr.InvalidTransitionError{Err: ErrFlowStateNotReachable}
	}
	m.transition(target)
	m.mu.Unlock()

	m.notify()
	return nil
}

// ReportFailure reverts a pending transition: a failed start falls back to
// Stopped, a failed stop back to Started. Reporting a failure with nothing
// pending is itself an error.
func (m *FlowStateMachine) ReportFailure() error {
	m.mu.Lock()
	switch m.state {
	case StreamFlowStatePendingStart:
		m.transition(StreamFlowStateStopped)
	case StreamFlowStatePendingStop:
		m.transition(StreamFlowStateStarted)
	default:
		m.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrNotPending}
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *FlowStateMachine) drive(active bool) error {
	if m.driver == nil {
		return nil
	}
	return m.driver(active)
}

// transition records the new state and queues its notification. Caller
// holds the lock.
func (m *FlowStateMachine) transition(next StreamFlowState) {
	m.state = next
	m.notifications = append(m.notifications, next)
}

// notify drains the queued notifications without holding the lock across
// handler invocations. Only one caller drains at a time, so transitions
// made from inside a handler are delivered after the one in flight.
func (m *FlowStateMachine) notify() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.notifications) > 0 {
		next := m.notifications[0]
		m.notifications = m.notifications[1:]
		handler := m.onChange
		m.mu.Unlock()
		if handler != nil {
			handler(next)
		}
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}
