package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotelepathy/call/pkg/callerr"
)

func testCandidates() []Candidate {
	return []Candidate{
		{Component: ComponentData, Foundation: "1", Priority: 2130706431, Address: "192.0.2.10", Port: 5000, Protocol: "udp", Type: CandidateTypeHost},
		{Component: ComponentControl, Foundation: "1", Priority: 2130706430, Address: "192.0.2.10", Port: 5001, Protocol: "udp", Type: CandidateTypeHost},
	}
}

func acceptAll(candidates []Candidate) ([]Candidate, error) {
	return candidates, nil
}

func TestCandidateStoreNoPolicy(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	_, err := cs.AddLocalCandidates(testCandidates())
	var notImplemented *callerr.NotImplementedError
	assert.ErrorAs(t, err, &notImplemented)
	assert.ErrorIs(t, err, ErrNoCandidatePolicy)
}

func TestCandidateStorePolicyFilters(t *testing.T) {
	cs := NewCandidateStore(func(candidates []Candidate) ([]Candidate, error) {
		return candidates[:1], nil
	}, nil)

	var announced []Candidate
	cs.OnLocalCandidatesAdded(func(added []Candidate) {
		announced = append(announced, added...)
	})

	accepted, err := cs.AddLocalCandidates(testCandidates())
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	assert.Equal(t, accepted, announced)
	assert.Equal(t, accepted, cs.LocalCandidates())
}

func TestCandidateStoreCredentialResetClearsCandidates(t *testing.T) {
	cs := NewCandidateStore(acceptAll, nil)

	_, err := cs.AddLocalCandidates(testCandidates())
	require.NoError(t, err)
	require.Len(t, cs.LocalCandidates(), 2)

	var replaced [][]Candidate
	cs.OnLocalCandidatesChanged(func(candidates []Candidate) {
		replaced = append(replaced, candidates)
	})

	require.NoError(t, cs.SetCredentials("user", "pass"))
	assert.Empty(t, cs.LocalCandidates())
	require.Len(t, replaced, 1)
	assert.Empty(t, replaced[0])
}

func TestCandidateStoreEmptyCredentials(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	var invalid *callerr.InvalidArgumentError
	assert.ErrorAs(t, cs.SetCredentials("", "pass"), &invalid)
	assert.ErrorAs(t, cs.SetCredentials("user", ""), &invalid)
}

func TestCandidateStoreGenerateCredentials(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	creds, err := cs.GenerateCredentials()
	require.NoError(t, err)
	assert.Len(t, creds.Username, 16)
	assert.Len(t, creds.Password, 32)
	assert.Equal(t, creds, cs.Credentials())

	again, err := cs.GenerateCredentials()
	require.NoError(t, err)
	assert.NotEqual(t, creds, again)
}

func TestCandidateStoreServerInfoLatch(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	retrieved := 0
	cs.OnServerInfoRetrieved(func() { retrieved++ })

	stun, err := NewSTUNServer("stun:stun.example.org:3478")
	require.NoError(t, err)
	cs.SetSTUNServers([]STUNServer{stun})
	assert.False(t, cs.HasServerInfo())
	assert.Zero(t, retrieved)

	relay, err := NewRelayInfo("turn:turn.example.org:3478", "user", "pass")
	require.NoError(t, err)
	cs.SetRelayInfo([]RelayInfo{relay})
	assert.True(t, cs.HasServerInfo())
	assert.Equal(t, 1, retrieved)

	// Later updates must not re-fire the latch.
	cs.SetSTUNServers(nil)
	cs.SetRelayInfo(nil)
	assert.Equal(t, 1, retrieved)
}

func TestCandidateStoreFinishInitialCandidates(t *testing.T) {
	poked := 0
	cs := NewCandidateStore(nil, func() { poked++ })

	cs.FinishInitialCandidates()
	assert.Equal(t, 1, poked)

	NewCandidateStore(nil, nil).FinishInitialCandidates()
}

func TestCandidateStoreEndpoints(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	var added, removed []*Endpoint
	cs.OnEndpointsChanged(func(a, r []*Endpoint) {
		added = append(added, a...)
		removed = append(removed, r...)
	})

	endpoint := NewEndpoint("endpoint0", StreamTransportTypeICE)
	cs.AddEndpoint(endpoint)
	assert.Equal(t, []*Endpoint{endpoint}, added)
	assert.Empty(t, removed)
	assert.Equal(t, []*Endpoint{endpoint}, cs.Endpoints())

	cs.RemoveEndpoint(endpoint)
	assert.Equal(t, []*Endpoint{endpoint}, removed)
	assert.Empty(t, cs.Endpoints())

	cs.RemoveEndpoint(endpoint)
	assert.Len(t, removed, 1)
}

func TestCandidateStoreEmptyBatchNeedsPolicy(t *testing.T) {
	cs := NewCandidateStore(nil, nil)

	_, err := cs.AddLocalCandidates(nil)
	assert.ErrorIs(t, err, ErrNoCandidatePolicy)
}

func TestCandidateStoreHandlersReadBack(t *testing.T) {
	cs := NewCandidateStore(acceptAll, nil)

	// Every handler observes the store through its public accessors; none
	// of these calls may block on the store's own lock.
	var fromAdded []Candidate
	cs.OnLocalCandidatesAdded(func([]Candidate) {
		fromAdded = cs.LocalCandidates()
	})
	cs.OnCredentialsChanged(func(creds Credentials) {
		assert.Equal(t, creds, cs.Credentials())
	})
	cs.OnLocalCandidatesChanged(func([]Candidate) {
		assert.Empty(t, cs.LocalCandidates())
	})
	cs.OnServerInfoRetrieved(func() {
		assert.True(t, cs.HasServerInfo())
	})
	endpointsSeen := -1
	cs.OnEndpointsChanged(func([]*Endpoint, []*Endpoint) {
		endpointsSeen = len(cs.Endpoints())
	})

	accepted, err := cs.AddLocalCandidates(testCandidates())
	require.NoError(t, err)
	assert.Equal(t, accepted, fromAdded)

	require.NoError(t, cs.SetCredentials("user", "pass"))
	cs.SetSTUNServers(nil)
	cs.SetRelayInfo(nil)

	endpoint := NewEndpoint("endpoint0", StreamTransportTypeICE)
	cs.AddEndpoint(endpoint)
	assert.Equal(t, 1, endpointsSeen)
	cs.RemoveEndpoint(endpoint)
	assert.Zero(t, endpointsSeen)
}
