package call

// EngineHooks is the boundary to the external media engine. Every hook is
// optional: a nil start/stop hook means the intent is considered delivered
// and the engine will confirm out of band, a nil AcceptCandidates leaves the
// candidate policy unconfigured, a nil RequestHold makes hold requests
// complete synchronously.
//
// Hooks are asks, not blocking operations: they must return promptly and
// report asynchronous completion through the Complete/Report methods of the
// object they were asked about.
type EngineHooks struct {
	// StartSending and StopSending deliver local-to-remote flow intents.
	StartSending func(*Stream) error
	StopSending  func(*Stream) error

	// StartReceiving and StopReceiving deliver remote-to-local flow
	// intents.
	StartReceiving func(*Stream) error
	StopReceiving  func(*Stream) error

	// AcceptCandidates filters a batch of local candidates before the
	// stream's store appends them.
	AcceptCandidates func(*Stream, []Candidate) ([]Candidate, error)

	// CandidatesPrepared is poked when the initial candidate batch of a
	// stream is complete.
	CandidatesPrepared func(*Stream)

	// RequestHold delivers a call-level hold or unhold intent, confirmed
	// later through Call.CompleteHoldStateChange.
	RequestHold func(*Call, bool) error
}
