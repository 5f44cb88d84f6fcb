package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCallState(t *testing.T) {
	testCases := []struct {
		stateString   string
		expectedState CallState
	}{
		{ErrUnknownType.Error(), CallState(0)},
		{"pending-initiator", CallStatePendingInitiator},
		{"pending-receiver", CallStatePendingReceiver},
		{"ringing", CallStateRinging},
		{"accepted", CallStateAccepted},
		{"ended", CallStateEnded},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedState,
			newCallState(testCase.stateString),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestCallStateString(t *testing.T) {
	testCases := []struct {
		state          CallState
		expectedString string
	}{
		{CallState(0), ErrUnknownType.Error()},
		{CallStatePendingInitiator, "pending-initiator"},
		{CallStatePendingReceiver, "pending-receiver"},
		{CallStateRinging, "ringing"},
		{CallStateAccepted, "accepted"},
		{CallStateEnded, "ended"},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.state.String(),
			"testCase: %d %v", i, testCase,
		)
	}
}
