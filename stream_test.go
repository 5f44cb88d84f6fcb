package call

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotelepathy/call/pkg/callerr"
)

type mapResolver map[Handle]string

func (m mapResolver) Inspect(h Handle) (string, error) {
	id, ok := m[h]
	if !ok {
		return "", errors.New("unknown handle")
	}
	return id, nil
}

func newStreamTestContent(t *testing.T, hooks EngineHooks, resolver HandleResolver) (*Call, *Content) {
	t.Helper()

	se := SettingEngine{}
	se.SetEngineHooks(hooks)
	if resolver != nil {
		se.SetHandleResolver(resolver)
	}

	c := NewAPI(WithSettingEngine(se)).NewCall(CallConfig{LocallyRequested: true})
	content, err := c.AddContent("audio", MediaTypeAudio)
	require.NoError(t, err)
	return c, content
}

func TestStreamIncomingProposal(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, false)
	require.NoError(t, err)

	assert.Equal(t, SendingStatePendingSend, s.RemoteMembers()[42])
	assert.Equal(t, StreamFlowStatePendingStart, s.ReceivingState())
	assert.Equal(t, StreamFlowStateStopped, s.SendingState())
}

func TestStreamRequestReceiving(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, mapResolver{42: "alice@example.org"})

	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)
	require.Equal(t, StreamFlowStateStopped, s.ReceivingState())

	var snapshots []map[Handle]SendingState
	s.OnRemoteMembersChanged(func(members map[Handle]SendingState) {
		snapshots = append(snapshots, members)
	})

	require.NoError(t, s.RequestReceiving(42, true))
	assert.Equal(t, SendingStatePendingSend, s.RemoteMembers()[42])
	assert.Equal(t, StreamFlowStatePendingStart, s.ReceivingState())
	require.Len(t, snapshots, 1)
	assert.Equal(t, SendingStatePendingSend, snapshots[0][42])
}

func TestStreamRequestReceivingUnknownContact(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, mapResolver{42: "alice@example.org", 7: "bob@example.org"})

	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)

	var invalid *callerr.InvalidArgumentError
	assert.ErrorAs(t, s.RequestReceiving(0, true), &invalid)
	assert.ErrorAs(t, s.RequestReceiving(99, true), &invalid)
	// Resolvable but not a member of this stream.
	assert.ErrorAs(t, s.RequestReceiving(7, true), &invalid)
}

func TestStreamSendingLifecycle(t *testing.T) {
	var starts, stops int
	hooks := EngineHooks{
		StartSending: func(*Stream) error { starts++; return nil },
		StopSending:  func(*Stream) error { stops++; return nil },
	}
	_, content := newStreamTestContent(t, hooks, nil)

	s, err := content.AddStream(0, StreamTransportTypeICE, true)
	require.NoError(t, err)
	assert.Equal(t, 1, starts, "locally requested stream asks the engine to send")
	assert.Equal(t, StreamFlowStatePendingStart, s.SendingState())

	require.NoError(t, s.CompleteSendingStateChange(StreamFlowStateStarted))
	assert.Equal(t, StreamFlowStateStarted, s.SendingState())

	require.NoError(t, s.SetSending(false))
	assert.Equal(t, 1, stops)
	assert.Equal(t, StreamFlowStatePendingStop, s.SendingState())

	require.NoError(t, s.ReportSendingFailure(CallStateReason{Reason: CallStateChangeReasonMediaError}))
	assert.Equal(t, StreamFlowStateStarted, s.SendingState())
}

func TestStreamCompleteReceivingCommitsMembers(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, false)
	require.NoError(t, err)
	require.Equal(t, SendingStatePendingSend, s.RemoteMembers()[42])

	require.NoError(t, s.CompleteReceivingStateChange(StreamFlowStateStarted))
	assert.Equal(t, SendingStateSending, s.RemoteMembers()[42])

	require.NoError(t, s.RequestReceiving(42, false))
	assert.Equal(t, SendingStatePendingStopSending, s.RemoteMembers()[42])
	assert.Equal(t, StreamFlowStatePendingStop, s.ReceivingState())

	require.NoError(t, s.CompleteReceivingStateChange(StreamFlowStateStopped))
	assert.Equal(t, SendingStateNone, s.RemoteMembers()[42])
}

func TestStreamICERestart(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)

	requested := 0
	s.OnICERestartRequested(func() { requested++ })

	require.NoError(t, s.RequestICERestart())
	require.NoError(t, s.RequestICERestart())
	assert.Equal(t, 1, requested, "restart is one-shot until new credentials arrive")
	assert.True(t, s.ICERestartPending())

	_, err = s.GenerateCredentials()
	require.NoError(t, err)
	assert.False(t, s.ICERestartPending())

	require.NoError(t, s.RequestICERestart())
	assert.Equal(t, 2, requested)
}

func TestStreamCredentialChangeClearsCandidates(t *testing.T) {
	hooks := EngineHooks{
		AcceptCandidates: func(_ *Stream, candidates []Candidate) ([]Candidate, error) {
			return candidates, nil
		},
	}
	_, content := newStreamTestContent(t, hooks, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)

	accepted, err := s.AddCandidates(testCandidates())
	require.NoError(t, err)
	require.Len(t, accepted, 2)

	require.NoError(t, s.SetCredentials("fragment", "password"))
	assert.Empty(t, s.CandidateStore().LocalCandidates())
}

func TestStreamRemovedRefusesMutation(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s1, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)
	_, err = content.AddStream(7, StreamTransportTypeICE, true)
	require.NoError(t, err)

	var removed []*Stream
	content.OnStreamRemoved(func(s *Stream, _ CallStateReason) {
		removed = append(removed, s)
	})

	s1.Fail(CallStateReason{Reason: CallStateChangeReasonMediaError})
	assert.Equal(t, []*Stream{s1}, removed)
	assert.Len(t, content.Streams(), 1)

	var notAvailable *callerr.NotAvailableError
	assert.ErrorAs(t, s1.SetSending(true), &notAvailable)
	assert.ErrorIs(t, s1.RequestICERestart(), ErrStreamRemoved)
}

func TestStreamFailLastStreamEndsCall(t *testing.T) {
	c, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)

	reason := CallStateReason{Reason: CallStateChangeReasonNoStreams}
	s.Fail(reason)

	assert.True(t, c.Ended())
	assert.Empty(t, c.Contents())
	assert.Equal(t, reason, c.StateReason())
}

func TestStreamRequestReceivingWhileStarted(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(42, StreamTransportTypeICE, false)
	require.NoError(t, err)
	require.NoError(t, s.CompleteReceivingStateChange(StreamFlowStateStarted))
	require.Equal(t, SendingStateSending, s.RemoteMembers()[42])

	// A failed stop leaves the aggregate machine Started with the member
	// still marked for stopping.
	require.NoError(t, s.RequestReceiving(42, false))
	require.NoError(t, s.ReportReceivingFailure(CallStateReason{Reason: CallStateChangeReasonMediaError}))
	require.Equal(t, StreamFlowStateStarted, s.ReceivingState())
	require.Equal(t, SendingStatePendingStopSending, s.RemoteMembers()[42])

	// Media is already flowing, so the member commits without waiting for
	// a receiving-state change that will never come.
	require.NoError(t, s.RequestReceiving(42, true))
	assert.Equal(t, SendingStateSending, s.RemoteMembers()[42])
	assert.Equal(t, StreamFlowStateStarted, s.ReceivingState())
}

func TestStreamFlowHandlerReadsBack(t *testing.T) {
	_, content := newStreamTestContent(t, EngineHooks{}, nil)

	s, err := content.AddStream(0, StreamTransportTypeICE, true)
	require.NoError(t, err)

	var seen []StreamFlowState
	s.OnSendingStateChanged(func(state StreamFlowState) {
		assert.Equal(t, state, s.SendingState())
		seen = append(seen, state)
	})

	require.NoError(t, s.CompleteSendingStateChange(StreamFlowStateStarted))
	assert.Equal(t, []StreamFlowState{StreamFlowStateStarted}, seen)
}
