package call

// Packetization indicates the packetization scheme negotiated for a content.
type Packetization int

const (
	// PacketizationRTP is standard RTP packetization.
	PacketizationRTP Packetization = iota

	// PacketizationRaw is raw, unpacketized media.
	PacketizationRaw
)

func (p Packetization) String() string {
	switch p {
	case PacketizationRTP:
		return "rtp"
	case PacketizationRaw:
		return "raw"
	default:
		return ErrUnknownType.Error()
	}
}
