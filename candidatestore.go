package call

import (
	"sync"

	"github.com/pion/randutil"

	"github.com/gotelepathy/call/pkg/callerr"
)

const (
	credentialRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	lenUsernameFrag = 16
	lenPassword     = 32
)

// CandidateStore books the local transport candidates, the check
// credentials, the server information and the endpoints of one stream.
// Candidates are append-only within a credential generation; every
// credential change clears them.
//
// Acceptance of candidates is delegated to an injected policy; the store
// itself never validates transport-specific fields.
type CandidateStore struct {
	mu sync.Mutex

	credentials     Credentials
	localCandidates []Candidate

	stunServers []STUNServer
	relayInfo   []RelayInfo
	stunSet     bool
	relaySet    bool
	serverInfo  bool

	endpoints []*Endpoint

	acceptPolicy func([]Candidate) ([]Candidate, error)
	preparedHook func()

	onCredentialsChanged     func(Credentials)
	onLocalCandidatesAdded   func([]Candidate)
	onLocalCandidatesChanged func([]Candidate)
	onSTUNServersChanged     func([]STUNServer)
	onRelayInfoChanged       func([]RelayInfo)
	onServerInfoRetrieved    func()
	onEndpointsChanged       func(added, removed []*Endpoint)
}

// NewCandidateStore creates a store. acceptPolicy filters candidate batches
// before they are appended; preparedHook is poked when the initial batch is
// complete. Both may be nil.
func NewCandidateStore(acceptPolicy func([]Candidate) ([]Candidate, error), preparedHook func()) *CandidateStore {
	return &CandidateStore{acceptPolicy: acceptPolicy, preparedHook: preparedHook}
}

// OnCredentialsChanged sets the handler fired on every credential change.
func (cs *CandidateStore) OnCredentialsChanged(f func(Credentials)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onCredentialsChanged = f
}

// OnLocalCandidatesAdded sets the handler fired with each accepted batch.
func (cs *CandidateStore) OnLocalCandidatesAdded(f func([]Candidate)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onLocalCandidatesAdded = f
}

// OnLocalCandidatesChanged sets the handler fired when the whole candidate
// list is replaced, notably with an empty list on credential change.
func (cs *CandidateStore) OnLocalCandidatesChanged(f func([]Candidate)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onLocalCandidatesChanged = f
}

// OnSTUNServersChanged sets the handler fired when the STUN server list is
// replaced.
func (cs *CandidateStore) OnSTUNServersChanged(f func([]STUNServer)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onSTUNServersChanged = f
}

// OnRelayInfoChanged sets the handler fired when the relay list is replaced.
func (cs *CandidateStore) OnRelayInfoChanged(f func([]RelayInfo)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onRelayInfoChanged = f
}

// OnServerInfoRetrieved sets the handler fired exactly once, when both STUN
// and relay information have been set at least once.
func (cs *CandidateStore) OnServerInfoRetrieved(f func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onServerInfoRetrieved = f
}

// OnEndpointsChanged sets the handler fired when endpoints are added or
// removed.
func (cs *CandidateStore) OnEndpointsChanged(f func(added, removed []*Endpoint)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.onEndpointsChanged = f
}

// SetCredentials replaces the check credentials and clears the local
// candidate list, since candidates of the previous generation are no longer
// valid.
func (cs *CandidateStore) SetCredentials(username, password string) error {
	if username == "" || password == "" {
		return &callerr.InvalidArgumentError{Err: ErrCredentialsEmpty}
	}

	cs.mu.Lock()
	cs.credentials = Credentials{Username: username, Password: password}
	cs.localCandidates = nil
	creds := cs.credentials
	onCredentials := cs.onCredentialsChanged
	onCandidates := cs.onLocalCandidatesChanged
	cs.mu.Unlock()

	if onCredentials != nil {
		onCredentials(creds)
	}
	if onCandidates != nil {
		onCandidates(nil)
	}
	return nil
}

// GenerateCredentials mints a fresh credential generation, as done on call
// setup and on ICE restart.
func (cs *CandidateStore) GenerateCredentials() (Credentials, error) {
	username, err := randutil.GenerateCryptoRandomString(lenUsernameFrag, credentialRunes)
	if err != nil {
		return Credentials{}, err
	}
	password, err := randutil.GenerateCryptoRandomString(lenPassword, credentialRunes)
	if err != nil {
		return Credentials{}, err
	}
	if err := cs.SetCredentials(username, password); err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, Password: password}, nil
}

// Credentials returns the current credential generation.
func (cs *CandidateStore) Credentials() Credentials {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.credentials
}

// AddLocalCandidates runs the batch through the acceptance policy and
// appends the accepted subset. The accepted subset is returned and announced
// verbatim.
func (cs *CandidateStore) AddLocalCandidates(candidates []Candidate) ([]Candidate, error) {
	cs.mu.Lock()
	policy := cs.acceptPolicy
	cs.mu.Unlock()
	if policy == nil {
		return nil, &callerr.NotImplementedError{Err: ErrNoCandidatePolicy}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// The policy call crosses into the engine; never hold the lock here.
	accepted, err := policy(candidates)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, nil
	}

	cs.mu.Lock()
	cs.localCandidates = append(cs.localCandidates, accepted...)
	handler := cs.onLocalCandidatesAdded
	cs.mu.Unlock()

	if handler != nil {
		handler(accepted)
	}
	return accepted, nil
}

// LocalCandidates returns a copy of the current candidate list.
func (cs *CandidateStore) LocalCandidates() []Candidate {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]Candidate, len(cs.localCandidates))
	copy(out, cs.localCandidates)
	return out
}

// FinishInitialCandidates signals that the first candidate batch is
// complete. Without a configured hook it is a no-op.
func (cs *CandidateStore) FinishInitialCandidates() {
	cs.mu.Lock()
	hook := cs.preparedHook
	cs.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// SetSTUNServers replaces the STUN server list.
func (cs *CandidateStore) SetSTUNServers(servers []STUNServer) {
	cs.mu.Lock()
	cs.stunServers = append([]STUNServer(nil), servers...)
	cs.stunSet = true
	replaced := cs.stunServers
	handler := cs.onSTUNServersChanged
	retrieved := cs.latchServerInfoLocked()
	cs.mu.Unlock()

	if handler != nil {
		handler(replaced)
	}
	if retrieved != nil {
		retrieved()
	}
}

// STUNServers returns a copy of the STUN server list.
func (cs *CandidateStore) STUNServers() []STUNServer {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]STUNServer(nil), cs.stunServers...)
}

// SetRelayInfo replaces the relay server list.
func (cs *CandidateStore) SetRelayInfo(info []RelayInfo) {
	cs.mu.Lock()
	cs.relayInfo = append([]RelayInfo(nil), info...)
	cs.relaySet = true
	replaced := cs.relayInfo
	handler := cs.onRelayInfoChanged
	retrieved := cs.latchServerInfoLocked()
	cs.mu.Unlock()

	if handler != nil {
		handler(replaced)
	}
	if retrieved != nil {
		retrieved()
	}
}

// RelayInfo returns a copy of the relay server list.
func (cs *CandidateStore) RelayInfo() []RelayInfo {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]RelayInfo(nil), cs.relayInfo...)
}

// HasServerInfo reports whether both STUN and relay information have been
// set at least once.
func (cs *CandidateStore) HasServerInfo() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.serverInfo
}

// latchServerInfoLocked flips the one-shot server-info latch and returns the
// handler to fire, if any. Caller holds the lock.
func (cs *CandidateStore) latchServerInfoLocked() func() {
	if cs.serverInfo || !cs.stunSet || !cs.relaySet {
		return nil
	}
	cs.serverInfo = true
	return cs.onServerInfoRetrieved
}

// AddEndpoint appends an endpoint and announces it.
func (cs *CandidateStore) AddEndpoint(endpoint *Endpoint) {
	cs.mu.Lock()
	cs.endpoints = append(cs.endpoints, endpoint)
	handler := cs.onEndpointsChanged
	cs.mu.Unlock()

	if handler != nil {
		handler([]*Endpoint{endpoint}, nil)
	}
}

// RemoveEndpoint removes an endpoint, typically on ICE restart. Unknown
// endpoints are ignored.
func (cs *CandidateStore) RemoveEndpoint(endpoint *Endpoint) {
	cs.mu.Lock()
	found := false
	for i, e := range cs.endpoints {
		if e == endpoint {
			cs.endpoints = append(cs.endpoints[:i], cs.endpoints[i+1:]...)
			found = true
			break
		}
	}
	handler := cs.onEndpointsChanged
	cs.mu.Unlock()

	if found && handler != nil {
		handler(nil, []*Endpoint{endpoint})
	}
}

// Endpoints returns a copy of the endpoint list.
func (cs *CandidateStore) Endpoints() []*Endpoint {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]*Endpoint(nil), cs.endpoints...)
}
