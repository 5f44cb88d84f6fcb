package call

import (
	"fmt"

	"github.com/pion/ice/v4"
)

// Candidate is one local or remote transport candidate. The core treats it
// as opaque bookkeeping; field-level validation is the candidate policy's
// job.
type Candidate struct {
	Component      Component
	Foundation     string
	Priority       uint32
	Address        string
	Port           int
	Protocol       string
	Type           CandidateType
	RelatedAddress string
	RelatedPort    int
}

// NewCandidateFromICE converts a candidate produced by an ICE agent.
func NewCandidateFromICE(i ice.Candidate) (Candidate, error) {
	typ, err := newCandidateTypeFromICE(i.Type())
	if err != nil {
		return Candidate{}, err
	}

	c := Candidate{
		Component:  Component(i.Component()),
		Foundation: i.Foundation(),
		Priority:   i.Priority(),
		Address:    i.Address(),
		Port:       i.Port(),
		Protocol:   i.NetworkType().NetworkShort(),
		Type:       typ,
	}
	if related := i.RelatedAddress(); related != nil {
		c.RelatedAddress = related.Address
		c.RelatedPort = related.Port
	}
	return c, nil
}

// UnmarshalCandidate parses an SDP-form candidate attribute, the wire shape
// most traversal agents hand over at the signaling boundary.
func UnmarshalCandidate(raw string) (Candidate, error) {
	i, err := ice.UnmarshalCandidate(raw)
	if err != nil {
		return Candidate{}, err
	}
	return NewCandidateFromICE(i)
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s %d %s %d typ %s", c.Protocol, c.Component, c.Address, c.Port, c.Type)
}

// CandidatePair is a matched local/remote candidate pair on an endpoint.
type CandidatePair struct {
	Local  Candidate
	Remote Candidate
}

func (p CandidatePair) String() string {
	return fmt.Sprintf("(local) %s <-> (remote) %s", p.Local, p.Remote)
}

// Credentials is the (username fragment, password) pair for one connectivity
// check generation. Replacing it invalidates every candidate published under
// the previous generation.
type Credentials struct {
	Username string
	Password string
}
