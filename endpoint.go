package call

import (
	"sync"
)

// Endpoint is a remote-visible connectivity descriptor: the remote
// candidates and credentials for one path towards a participant, with a
// connection state per transport component. A traversal engine produces and
// mutates endpoints; the core only books them.
type Endpoint struct {
	mu sync.Mutex

	id        string
	transport StreamTransportType

	remoteCredentials Credentials
	remoteCandidates  []Candidate
	selectedPairs     map[Component]CandidatePair
	states            map[Component]EndpointState

	controlling bool
	isICELite   bool

	onStateChanged        func(Component, EndpointState)
	onPairSelected        func(CandidatePair)
	onRemoteCandidates    func([]Candidate)
	onRemoteCredentialsCb func(Credentials)
}

// NewEndpoint creates an endpoint for one connectivity path.
func NewEndpoint(id string, transport StreamTransportType) *Endpoint {
	return &Endpoint{
		id:            id,
		transport:     transport,
		selectedPairs: map[Component]CandidatePair{},
		states:        map[Component]EndpointState{},
	}
}

// ID returns the endpoint identifier.
func (e *Endpoint) ID() string { return e.id }

// Transport returns the transport this endpoint belongs to.
func (e *Endpoint) Transport() StreamTransportType { return e.transport }

// OnStateChanged sets the handler fired on each per-component state change.
func (e *Endpoint) OnStateChanged(f func(Component, EndpointState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStateChanged = f
}

// OnCandidatePairSelected sets the handler fired when a pair is selected.
func (e *Endpoint) OnCandidatePairSelected(f func(CandidatePair)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPairSelected = f
}

// OnRemoteCandidatesAdded sets the handler fired when remote candidates
// arrive.
func (e *Endpoint) OnRemoteCandidatesAdded(f func([]Candidate)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRemoteCandidates = f
}

// OnRemoteCredentialsSet sets the handler fired when the remote credentials
// change.
func (e *Endpoint) OnRemoteCredentialsSet(f func(Credentials)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRemoteCredentialsCb = f
}

// AddRemoteCandidates appends candidates the remote side advertised for this
// path.
func (e *Endpoint) AddRemoteCandidates(candidates []Candidate) {
	if len(candidates) == 0 {
		return
	}
	e.mu.Lock()
	e.remoteCandidates = append(e.remoteCandidates, candidates...)
	handler := e.onRemoteCandidates
	e.mu.Unlock()

	if handler != nil {
		handler(candidates)
	}
}

// RemoteCandidates returns a copy of the remote candidate list.
func (e *Endpoint) RemoteCandidates() []Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Candidate, len(e.remoteCandidates))
	copy(out, e.remoteCandidates)
	return out
}

// SetRemoteCredentials records the check credentials the remote side uses on
// this path.
func (e *Endpoint) SetRemoteCredentials(username, password string) {
	e.mu.Lock()
	e.remoteCredentials = Credentials{Username: username, Password: password}
	creds := e.remoteCredentials
	handler := e.onRemoteCredentialsCb
	e.mu.Unlock()

	if handler != nil {
		handler(creds)
	}
}

// RemoteCredentials returns the remote check credentials.
func (e *Endpoint) RemoteCredentials() Credentials {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remoteCredentials
}

// SetState records the connection state of one component.
func (e *Endpoint) SetState(component Component, state EndpointState) {
	e.mu.Lock()
	e.states[component] = state
	handler := e.onStateChanged
	e.mu.Unlock()

	if handler != nil {
		handler(component, state)
	}
}

// State returns the connection state of one component. Components start out
// Connecting.
func (e *Endpoint) State(component Component) EndpointState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[component]
}

// SetSelectedCandidatePair records the pair the traversal engine settled on
// for the pair's component.
func (e *Endpoint) SetSelectedCandidatePair(pair CandidatePair) {
	e.mu.Lock()
	e.selectedPairs[pair.Local.Component] = pair
	handler := e.onPairSelected
	e.mu.Unlock()

	if handler != nil {
		handler(pair)
	}
}

// SelectedCandidatePair returns the selected pair for a component, if any.
func (e *Endpoint) SelectedCandidatePair(component Component) (CandidatePair, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pair, ok := e.selectedPairs[component]
	return pair, ok
}

// SetControlling records which side drives conflict resolution.
func (e *Endpoint) SetControlling(controlling bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controlling = controlling
}

// Controlling reports whether the local side is controlling.
func (e *Endpoint) Controlling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controlling
}

// SetIsICELite records that the remote side is an ICE-lite implementation.
func (e *Endpoint) SetIsICELite(lite bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isICELite = lite
}

// IsICELite reports whether the remote side is ICE-lite.
func (e *Endpoint) IsICELite() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isICELite
}
