package call

// CallConfig describes how a call should be created.
type CallConfig struct {
	// LocallyRequested selects the initial state: true for an outgoing
	// call (PendingInitiator), false for an incoming one (PendingReceiver).
	LocallyRequested bool

	// InitialAudio and InitialVideo request contents that exist from call
	// creation, with disposition Initial.
	InitialAudio bool
	InitialVideo bool

	// InitialAudioName and InitialVideoName name the initial contents.
	// Empty values default to "audio" and "video".
	InitialAudioName string
	InitialVideoName string
}
