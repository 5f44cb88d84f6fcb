package call

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gotelepathy/call/pkg/callerr"
)

// Codec is one entry of a media description's codec list.
type Codec struct {
	// ID is the RTP payload type.
	ID uint8

	// Name is the encoding name, e.g. "opus".
	Name string

	// ClockRate is the sampling clock in Hz.
	ClockRate uint32

	// Channels is the channel count, zero when not applicable.
	Channels uint16

	// Updated marks this entry as an update to a previously accepted codec
	// rather than a new proposal.
	Updated bool

	// Parameters carries opaque codec parameters (fmtp-style).
	Parameters map[string]string
}

// MediaDescriptionProperties is the negotiable payload of a description: the
// codec list, the SSRCs per participant and the negotiation flags.
type MediaDescriptionProperties struct {
	Codecs []Codec

	// SSRCs maps each participant to the synchronization sources it will
	// use.
	SSRCs map[Handle][]uint32

	// RemoteContact optionally asserts which participant the properties are
	// for; zero means unasserted.
	RemoteContact Handle

	FurtherNegotiationRequired bool
}

// MediaDescriptionState is the lifecycle state of a description.
type MediaDescriptionState int

const (
	// MediaDescriptionStateOpen means the description awaits resolution.
	MediaDescriptionStateOpen MediaDescriptionState = iota

	// MediaDescriptionStateAccepted is terminal.
	MediaDescriptionStateAccepted

	// MediaDescriptionStateRejected is terminal.
	MediaDescriptionStateRejected

	// MediaDescriptionStateCancelled is terminal.
	MediaDescriptionStateCancelled
)

func (s MediaDescriptionState) String() string {
	switch s {
	case MediaDescriptionStateOpen:
		return "open"
	case MediaDescriptionStateAccepted:
		return "accepted"
	case MediaDescriptionStateRejected:
		return "rejected"
	case MediaDescriptionStateCancelled:
		return "cancelled"
	default:
		return ErrUnknownType.Error()
	}
}

// RejectedError is the resolution error delivered when a description is
// rejected. It carries the rejecting side's reason.
type RejectedError struct {
	Reason CallStateReason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("media description rejected: %s", e.Reason.Reason)
}

// MediaDescription is one negotiable proposal of codecs and SSRCs addressed
// to a single remote participant. It is created Open and terminates in
// exactly one of Accepted, Rejected or Cancelled.
type MediaDescription struct {
	mu sync.Mutex

	id                 string
	remoteContact      Handle
	hasRemoteInfo      bool
	furtherNegotiation bool

	codecs []Codec
	ssrcs  map[Handle][]uint32

	state   MediaDescriptionState
	current bool
	resolve func(MediaDescriptionProperties, error)
}

// NewMediaDescription creates an Open description targeting remoteContact.
// hasRemoteInformation is false for a purely local offer that awaits remote
// input.
func NewMediaDescription(remoteContact Handle, hasRemoteInformation, furtherNegotiationRequired bool) *MediaDescription {
	return &MediaDescription{
		id:                 uuid.NewString(),
		remoteContact:      remoteContact,
		hasRemoteInfo:      hasRemoteInformation,
		furtherNegotiation: furtherNegotiationRequired,
		ssrcs:              map[Handle][]uint32{},
	}
}

// ID returns the description's negotiation-instance identifier.
func (d *MediaDescription) ID() string { return d.id }

// RemoteContact returns the participant this description targets.
func (d *MediaDescription) RemoteContact() Handle { return d.remoteContact }

// HasRemoteInformation reports whether the description carries a remote
// proposal. Only such descriptions can be rejected.
func (d *MediaDescription) HasRemoteInformation() bool { return d.hasRemoteInfo }

// FurtherNegotiationRequired reports whether another round is expected after
// this one resolves.
func (d *MediaDescription) FurtherNegotiationRequired() bool { return d.furtherNegotiation }

// State returns the lifecycle state.
func (d *MediaDescription) State() MediaDescriptionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// AppendCodec adds a codec to the proposal. Codecs accumulate in call order;
// duplicates are kept.
func (d *MediaDescription) AppendCodec(codec Codec) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != MediaDescriptionStateOpen {
		return &callerr.NotAvailableError{Err: ErrDescriptionResolved}
	}
	d.codecs = append(d.codecs, codec)
	return nil
}

// AddSSRC records a synchronization source for a participant. Adding the
// same (contact, ssrc) pair twice is a no-op.
func (d *MediaDescription) AddSSRC(contact Handle, ssrc uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != MediaDescriptionStateOpen {
		return &callerr.NotAvailableError{Err: ErrDescriptionResolved}
	}
	for _, existing := range d.ssrcs[contact] {
		if existing == ssrc {
			return nil
		}
	}
	d.ssrcs[contact] = append(d.ssrcs[contact], ssrc)
	return nil
}

// Properties returns a snapshot of the description's current payload.
func (d *MediaDescription) Properties() MediaDescriptionProperties {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.propertiesLocked()
}

func (d *MediaDescription) propertiesLocked() MediaDescriptionProperties {
	props := MediaDescriptionProperties{
		Codecs:                     append([]Codec(nil), d.codecs...),
		SSRCs:                      map[Handle][]uint32{},
		RemoteContact:              d.remoteContact,
		FurtherNegotiationRequired: d.furtherNegotiation,
	}
	for contact, list := range d.ssrcs {
		props.SSRCs[contact] = append([]uint32(nil), list...)
	}
	return props
}

// Accept resolves the description with the given properties, which become
// the new local and remote description state for the target participant.
// Valid only while the description is the current offer of its queue.
func (d *MediaDescription) Accept(props MediaDescriptionProperties) error {
	d.mu.Lock()
	if d.state != MediaDescriptionStateOpen {
		d.mu.Unlock()
		return &callerr.AlreadyResolvedError{Err: ErrDescriptionResolved}
	}
	if !d.current {
		d.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrOfferNotCurrent}
	}
	if len(props.Codecs) == 0 {
		d.mu.Unlock()
		return &callerr.InvalidArgumentError{Err: ErrCodecsEmpty}
	}
	if props.RemoteContact != 0 && props.RemoteContact != d.remoteContact {
		d.mu.Unlock()
		return &callerr.InvalidArgumentError{Err: ErrRemoteContactMismatch}
	}

	d.state = MediaDescriptionStateAccepted
	resolve := d.resolve
	d.mu.Unlock()

	if resolve != nil {
		resolve(props, nil)
	}
	return nil
}

// Reject resolves the description negatively. Only descriptions carrying a
// remote proposal can be rejected.
func (d *MediaDescription) Reject(reason CallStateReason) error {
	d.mu.Lock()
	if d.state != MediaDescriptionStateOpen {
		d.mu.Unlock()
		return &callerr.AlreadyResolvedError{Err: ErrDescriptionResolved}
	}
	if !d.hasRemoteInfo {
		d.mu.Unlock()
		return &callerr.InvalidArgumentError{Err: ErrNoRemoteInformation}
	}
	if !d.current {
		d.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrOfferNotCurrent}
	}

	d.state = MediaDescriptionStateRejected
	resolve := d.resolve
	d.mu.Unlock()

	if resolve != nil {
		resolve(MediaDescriptionProperties{}, &RejectedError{Reason: reason})
	}
	return nil
}

// Cancel resolves the description as superseded or torn down. It is a no-op
// on an already-terminal description.
func (d *MediaDescription) Cancel() {
	d.mu.Lock()
	if d.state != MediaDescriptionStateOpen {
		d.mu.Unlock()
		return
	}
	d.state = MediaDescriptionStateCancelled
	resolve := d.resolve
	d.mu.Unlock()

	if resolve != nil {
		resolve(MediaDescriptionProperties{}, &callerr.CancelledError{Err: ErrDescriptionTornDown})
	}
}

// bind attaches the queue's completion continuation. Called once, at
// enqueue. It refuses a description that is already terminal, since its
// continuation could never fire.
func (d *MediaDescription) bind(resolve func(MediaDescriptionProperties, error)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != MediaDescriptionStateOpen {
		return false
	}
	d.resolve = resolve
	return true
}

// setCurrent marks the description as the queue's active offer.
func (d *MediaDescription) setCurrent(current bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = current
}
