package call

// EndpointState is the connection state of one component of an endpoint.
type EndpointState int

const (
	// EndpointStateConnecting indicates connectivity checks are in
	// progress.
	EndpointStateConnecting EndpointState = iota

	// EndpointStateProvisionallyConnected indicates a usable pair was found
	// but checks continue.
	EndpointStateProvisionallyConnected

	// EndpointStateFullyConnected indicates the final pair was selected.
	EndpointStateFullyConnected

	// EndpointStateExhaustedCandidates indicates all pairs were tried
	// without success but more candidates may still arrive.
	EndpointStateExhaustedCandidates

	// EndpointStateFailed indicates connectivity establishment failed for
	// good.
	EndpointStateFailed
)

func (s EndpointState) String() string {
	switch s {
	case EndpointStateConnecting:
		return "connecting"
	case EndpointStateProvisionallyConnected:
		return "provisionally-connected"
	case EndpointStateFullyConnected:
		return "fully-connected"
	case EndpointStateExhaustedCandidates:
		return "exhausted-candidates"
	case EndpointStateFailed:
		return "failed"
	default:
		return ErrUnknownType.Error()
	}
}
