package call

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotelepathy/call/pkg/callerr"
)

func TestCallIncomingLifecycle(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{})
	require.Equal(t, CallStatePendingReceiver, c.State())

	var states []CallState
	c.OnStateChanged(func(state CallState, _ CallStateReason) {
		states = append(states, state)
	})

	require.NoError(t, c.SetRinging())
	assert.Equal(t, CallStateRinging, c.State())
	assert.True(t, c.Flags().Has(CallFlagLocallyRinging))

	require.NoError(t, c.Accept())
	assert.Equal(t, CallStateAccepted, c.State())
	assert.False(t, c.Flags().Has(CallFlagLocallyRinging))
	assert.Equal(t, CallStateChangeReasonUserRequested, c.StateReason().Reason)

	var notAvailable *callerr.NotAvailableError
	assert.ErrorAs(t, c.Accept(), &notAvailable)
	assert.ErrorAs(t, c.SetRinging(), &notAvailable)

	assert.Equal(t, []CallState{CallStateRinging, CallStateAccepted}, states)
}

func TestCallOutgoingLifecycle(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{LocallyRequested: true})
	require.Equal(t, CallStatePendingInitiator, c.State())

	// Only an incoming call rings locally.
	var notAvailable *callerr.NotAvailableError
	assert.ErrorAs(t, c.SetRinging(), &notAvailable)
	assert.ErrorAs(t, c.Accept(), &notAvailable)

	require.NoError(t, c.SetRemoteRinging(42))
	assert.Equal(t, CallStateRinging, c.State())
	assert.Equal(t, Handle(42), c.StateReason().Actor)

	require.NoError(t, c.RemoteAccept(42))
	assert.Equal(t, CallStateAccepted, c.State())
}

func TestCallHangup(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{LocallyRequested: true, InitialAudio: true})
	content := c.Contents()[0]

	d := NewMediaDescription(42, true, false)
	ch := content.OfferMediaDescription(d)

	var removals int
	c.OnContentRemoved(func(*Content, CallStateReason) { removals++ })

	require.NoError(t, c.Hangup(0, CallStateChangeReasonUserRequested, "", "bye"))
	assert.True(t, c.Ended())
	assert.Equal(t, CallStateEnded, c.State())
	assert.Equal(t, "bye", c.StateReason().Message)

	var cancelled *callerr.CancelledError
	assert.ErrorAs(t, (<-ch).Err, &cancelled)
	assert.Zero(t, removals, "ending a call removes contents silently")

	assert.ErrorIs(t, c.Hangup(0, CallStateChangeReasonUserRequested, "", ""), ErrCallEnded)
	_, err := c.AddContent("late", MediaTypeAudio)
	assert.ErrorIs(t, err, ErrCallEnded)
	assert.ErrorIs(t, c.RequestHold(true), ErrCallEnded)
}

func TestCallHold(t *testing.T) {
	var holdAsks []bool
	se := SettingEngine{}
	se.SetEngineHooks(EngineHooks{
		RequestHold: func(_ *Call, hold bool) error {
			holdAsks = append(holdAsks, hold)
			return nil
		},
	})

	c := NewAPI(WithSettingEngine(se)).NewCall(CallConfig{LocallyRequested: true, InitialAudio: true})
	content := c.Contents()[0]
	s, err := content.AddStream(42, StreamTransportTypeICE, true)
	require.NoError(t, err)
	require.Equal(t, StreamFlowStatePendingStart, s.SendingState())

	var holdStates []LocalHoldState
	c.OnHoldStateChanged(func(state LocalHoldState) {
		holdStates = append(holdStates, state)
	})

	require.NoError(t, c.RequestHold(true))
	assert.Equal(t, LocalHoldStatePendingHold, c.HoldState())
	assert.Equal(t, []bool{true}, holdAsks)

	// Repeated requests towards the same target are no-ops.
	require.NoError(t, c.RequestHold(true))
	assert.Equal(t, []bool{true}, holdAsks)

	var notAvailable *callerr.NotAvailableError
	assert.ErrorAs(t, c.CompleteHoldStateChange(LocalHoldStateUnheld), &notAvailable)

	require.NoError(t, c.CompleteHoldStateChange(LocalHoldStateHeld))
	assert.Equal(t, LocalHoldStateHeld, c.HoldState())
	assert.True(t, c.Flags().Has(CallFlagLocallyHeld))
	assert.Equal(t, StreamFlowStatePendingStop, s.SendingState(), "holding pauses local sending")

	require.NoError(t, s.CompleteSendingStateChange(StreamFlowStateStopped))

	require.NoError(t, c.RequestHold(false))
	require.NoError(t, c.CompleteHoldStateChange(LocalHoldStateUnheld))
	assert.Equal(t, LocalHoldStateUnheld, c.HoldState())
	assert.False(t, c.Flags().Has(CallFlagLocallyHeld))
	assert.Equal(t, StreamFlowStatePendingStart, s.SendingState(), "unholding resumes local sending")

	assert.Equal(t, []LocalHoldState{
		LocalHoldStatePendingHold,
		LocalHoldStateHeld,
		LocalHoldStatePendingUnhold,
		LocalHoldStateUnheld,
	}, holdStates)
}

func TestCallHoldWithoutHookCompletesSynchronously(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{LocallyRequested: true})

	require.NoError(t, c.RequestHold(true))
	assert.Equal(t, LocalHoldStateHeld, c.HoldState())
	assert.True(t, c.Flags().Has(CallFlagLocallyHeld))

	require.NoError(t, c.RequestHold(false))
	assert.Equal(t, LocalHoldStateUnheld, c.HoldState())
}

func TestCallReportHoldFailure(t *testing.T) {
	se := SettingEngine{}
	se.SetEngineHooks(EngineHooks{RequestHold: func(*Call, bool) error { return nil }})
	c := NewAPI(WithSettingEngine(se)).NewCall(CallConfig{LocallyRequested: true})

	assert.ErrorIs(t, c.ReportHoldFailure(CallStateReason{}), ErrHoldNotPending)

	require.NoError(t, c.RequestHold(true))
	require.NoError(t, c.ReportHoldFailure(CallStateReason{Reason: CallStateChangeReasonInternalError}))
	assert.Equal(t, LocalHoldStateUnheld, c.HoldState())
}

func TestCallMute(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{LocallyRequested: true})

	events := 0
	c.OnMuteChanged(func(bool) { events++ })

	c.SetMuted(true)
	assert.True(t, c.Muted())
	assert.True(t, c.Flags().Has(CallFlagLocallyMuted))

	c.SetMuted(true)
	assert.Equal(t, 1, events)

	c.SetMuted(false)
	assert.False(t, c.Flags().Has(CallFlagLocallyMuted))
	assert.Equal(t, 2, events)
}

func TestCallQueuedAndForwardedFlags(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{})

	require.NoError(t, c.SetQueued(true))
	assert.True(t, c.Flags().Has(CallFlagLocallyQueued))

	c.SetForwarded()
	assert.True(t, c.Flags().Has(CallFlagForwarded))

	require.NoError(t, c.SetRinging())
	var notAvailable *callerr.NotAvailableError
	assert.ErrorAs(t, c.SetQueued(false), &notAvailable)
}

func TestCallMembers(t *testing.T) {
	se := SettingEngine{}
	se.SetHandleResolver(mapResolver{42: "alice@example.org"})
	c := NewAPI(WithSettingEngine(se)).NewCall(CallConfig{LocallyRequested: true})

	changes := 0
	c.OnMembersChanged(func(map[Handle]CallMemberFlags) { changes++ })

	var invalid *callerr.InvalidArgumentError
	assert.ErrorAs(t, c.UpdateMember(0, 0), &invalid)
	assert.ErrorAs(t, c.UpdateMember(99, 0), &invalid)

	require.NoError(t, c.UpdateMember(42, CallMemberFlagRinging))
	require.NoError(t, c.UpdateMember(42, CallMemberFlagRinging))
	assert.Equal(t, 1, changes)
	assert.Equal(t, CallMemberFlagRinging, c.Members()[42])

	require.NoError(t, c.RemoveMember(42))
	assert.ErrorAs(t, c.RemoveMember(42), &invalid)
	assert.Empty(t, c.Members())
	assert.Equal(t, 2, changes)
}

func TestCallLastContentRemovalEndsCall(t *testing.T) {
	c := NewAPI().NewCall(CallConfig{LocallyRequested: true, InitialAudio: true, InitialVideo: true})

	var removed []*Content
	c.OnContentRemoved(func(content *Content, _ CallStateReason) {
		removed = append(removed, content)
	})

	contents := c.Contents()
	require.Len(t, contents, 2)

	c.RemoveContent(contents[0], CallStateReason{Reason: CallStateChangeReasonMediaError})
	assert.False(t, c.Ended())
	assert.Len(t, removed, 1)

	reason := CallStateReason{Reason: CallStateChangeReasonNoStreams}
	c.RemoveContent(contents[1], reason)
	assert.True(t, c.Ended())
	assert.Equal(t, reason, c.StateReason())
	assert.Len(t, removed, 2)
}

func TestCallMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	api := NewAPI(WithMetrics(metrics))

	c := api.NewCall(CallConfig{LocallyRequested: true, InitialAudio: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.callsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.contentsActive.WithLabelValues("audio")))

	require.NoError(t, c.Hangup(0, CallStateChangeReasonUserRequested, "", ""))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.callsActive))
}
