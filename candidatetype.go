package call

import (
	"fmt"

	"github.com/pion/ice/v4"
)

// CandidateType represents the type of a transport candidate.
type CandidateType int

const (
	// CandidateTypeHost indicates a candidate bound directly to a local
	// interface address.
	CandidateTypeHost CandidateType = iota + 1

	// CandidateTypeServerReflexive indicates an address discovered through
	// a STUN server.
	CandidateTypeServerReflexive

	// CandidateTypePeerReflexive indicates an address learned from an
	// incoming connectivity check.
	CandidateTypePeerReflexive

	// CandidateTypeRelay indicates an address allocated on a relay server.
	CandidateTypeRelay
)

const (
	candidateTypeHostStr  = "host"
	candidateTypeSrflxStr = "srflx"
	candidateTypePrflxStr = "prflx"
	candidateTypeRelayStr = "relay"
)

// NewCandidateType builds a CandidateType from its SDP string form.
func NewCandidateType(raw string) (CandidateType, error) {
	switch raw {
	case candidateTypeHostStr:
		return CandidateTypeHost, nil
	case candidateTypeSrflxStr:
		return CandidateTypeServerReflexive, nil
	case candidateTypePrflxStr:
		return CandidateTypePeerReflexive, nil
	case candidateTypeRelayStr:
		return CandidateTypeRelay, nil
	default:
		return CandidateType(0), fmt.Errorf("unknown candidate type: %s", raw)
	}
}

func newCandidateTypeFromICE(t ice.CandidateType) (CandidateType, error) {
	switch t {
	case ice.CandidateTypeHost:
		return CandidateTypeHost, nil
	case ice.CandidateTypeServerReflexive:
		return CandidateTypeServerReflexive, nil
	case ice.CandidateTypePeerReflexive:
		return CandidateTypePeerReflexive, nil
	case ice.CandidateTypeRelay:
		return CandidateTypeRelay, nil
	default:
		return CandidateType(0), fmt.Errorf("unknown ICE candidate type: %s", t)
	}
}

func (t CandidateType) String() string {
	switch t {
	case CandidateTypeHost:
		return candidateTypeHostStr
	case CandidateTypeServerReflexive:
		return candidateTypeSrflxStr
	case CandidateTypePeerReflexive:
		return candidateTypePrflxStr
	case CandidateTypeRelay:
		return candidateTypeRelayStr
	default:
		return ErrUnknownType.Error()
	}
}
