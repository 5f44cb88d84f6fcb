package call

// StreamTransportType identifies the connectivity mechanism negotiated for a
// stream. The core only books candidates and endpoints for it; the traversal
// algorithm lives in the engine.
type StreamTransportType int

const (
	// StreamTransportTypeUnknown means the transport has not been decided.
	StreamTransportTypeUnknown StreamTransportType = iota

	// StreamTransportTypeRawUDP is plain UDP with no connectivity checks.
	StreamTransportTypeRawUDP

	// StreamTransportTypeICE is full ICE as in RFC 8445.
	StreamTransportTypeICE

	// StreamTransportTypeGTalkP2P is the legacy libjingle variant.
	StreamTransportTypeGTalkP2P

	// StreamTransportTypeMulticast is multicast UDP.
	StreamTransportTypeMulticast
)

func (t StreamTransportType) String() string {
	switch t {
	case StreamTransportTypeUnknown:
		return "unknown"
	case StreamTransportTypeRawUDP:
		return "raw-udp"
	case StreamTransportTypeICE:
		return "ice"
	case StreamTransportTypeGTalkP2P:
		return "gtalk-p2p"
	case StreamTransportTypeMulticast:
		return "multicast"
	default:
		return ErrUnknownType.Error()
	}
}
