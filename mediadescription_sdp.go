package call

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pion/sdp/v3"

	"github.com/gotelepathy/call/pkg/callerr"
)

// MarshalSDP renders the content's current local description for a
// participant as an SDP fragment, one media section carrying the negotiated
// codecs, the SSRCs, the stream credentials and the local candidates. It is
// a convenience for transports that speak SDP rather than structured
// properties.
func (c *Content) MarshalSDP(contact Handle) ([]byte, error) {
	props, ok := c.LocalMediaDescription(contact)
	if !ok {
		return nil, &callerr.NotAvailableError{Err: ErrNoLocalDescription}
	}

	media := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:  c.mediaType.String(),
			Port:   sdp.RangedPort{Value: 9},
			Protos: mediaProtos(c.Packetization()),
		},
	}

	for _, codec := range props.Codecs {
		media.WithCodec(codec.ID, codec.Name, codec.ClockRate, codec.Channels, fmtpLine(codec.Parameters))
	}
	for _, ssrcContact := range sortedHandles(props.SSRCs) {
		for _, ssrc := range props.SSRCs[ssrcContact] {
			media.WithValueAttribute(sdp.AttrKeySSRC, fmt.Sprintf("%d cname:%d", ssrc, ssrcContact))
		}
	}

	if streams := c.Streams(); len(streams) > 0 {
		store := streams[0].CandidateStore()
		if creds := store.Credentials(); creds.Username != "" {
			media.WithICECredentials(creds.Username, creds.Password)
		}
		for _, candidate := range store.LocalCandidates() {
			media.WithCandidate(candidateAttribute(candidate))
		}
	}

	session, err := sdp.NewJSEPSessionDescription(false)
	if err != nil {
		return nil, err
	}
	session.WithMedia(media)
	return session.Marshal()
}

func mediaProtos(p Packetization) []string {
	if p == PacketizationRaw {
		return []string{"udp"}
	}
	return []string{"RTP", "AVP"}
}

// fmtpLine renders codec parameters sorted by key so output is stable.
func fmtpLine(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(parts, ";")
}

func sortedHandles(m map[Handle][]uint32) []Handle {
	out := make([]Handle, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// candidateAttribute renders one candidate in a=candidate value form.
func candidateAttribute(c Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s %d %s %d typ %s",
		c.Foundation, c.Component, c.Protocol, c.Priority, c.Address, c.Port, c.Type)
	if c.RelatedAddress != "" {
		fmt.Fprintf(&b, " raddr %s rport %d", c.RelatedAddress, c.RelatedPort)
	}
	return b.String()
}
