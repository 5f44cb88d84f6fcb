package call

import (
	"errors"
	"sync"

	"github.com/pion/logging"

	"github.com/gotelepathy/call/pkg/callerr"
)

// Content is a single media type within a call: a set of streams plus the
// negotiation queue and the per-participant media description tables.
type Content struct {
	mu sync.Mutex

	call          *Call
	id            uint32
	name          string
	mediaType     MediaType
	disposition   ContentDisposition
	packetization Packetization

	streams      []*Stream
	nextStreamID uint32

	queue *offerQueue

	localDescriptions  map[Handle]MediaDescriptionProperties
	remoteDescriptions map[Handle]MediaDescriptionProperties

	dtmfEvent DTMFEvent
	dtmfState SendingState

	removed bool

	log logging.LeveledLogger

	onStreamAdded               func(*Stream)
	onStreamRemoved             func(*Stream, CallStateReason)
	onNewOffer                  func(*MediaDescription)
	onOfferDone                 func(*MediaDescription)
	onLocalDescriptionChanged   func(Handle, MediaDescriptionProperties)
	onRemoteDescriptionsChanged func(Handle, MediaDescriptionProperties)
	onDTMFChanged               func(DTMFEvent, SendingState)
}

func newContent(owner *Call, id uint32, name string, mediaType MediaType, disposition ContentDisposition) *Content {
	c := &Content{
		call:               owner,
		id:                 id,
		name:               name,
		mediaType:          mediaType,
		disposition:        disposition,
		packetization:      PacketizationRTP,
		nextStreamID:       1,
		localDescriptions:  map[Handle]MediaDescriptionProperties{},
		remoteDescriptions: map[Handle]MediaDescriptionProperties{},
		log:                owner.loggerFactory.NewLogger("content"),
	}
	c.queue = newOfferQueue(
		func(d *MediaDescription) {
			c.mu.Lock()
			handler := c.onNewOffer
			c.mu.Unlock()
			if handler != nil {
				handler(d)
			}
		},
		func(d *MediaDescription) {
			c.mu.Lock()
			handler := c.onOfferDone
			c.mu.Unlock()
			if handler != nil {
				handler(d)
			}
		},
		func(d *MediaDescription, props MediaDescriptionProperties, err error) {
			owner.metrics.offerResolved(offerOutcome(err))
			if err == nil {
				c.applyAccepted(d.RemoteContact(), props)
			}
		},
	)
	return c
}

func offerOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.As(err, new(*RejectedError)):
		return "rejected"
	default:
		return "cancelled"
	}
}

// ID returns the content id, unique within its call.
func (c *Content) ID() uint32 { return c.id }

// Name returns the human-readable content name.
func (c *Content) Name() string { return c.name }

// MediaType returns whether this content carries audio or video.
func (c *Content) MediaType() MediaType { return c.mediaType }

// Disposition reports how the content came to exist.
func (c *Content) Disposition() ContentDisposition { return c.disposition }

// Packetization returns the content's packetization scheme.
func (c *Content) Packetization() Packetization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.packetization
}

// OnStreamAdded sets the handler fired when a stream is registered.
func (c *Content) OnStreamAdded(f func(*Stream)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStreamAdded = f
}

// OnStreamRemoved sets the handler fired when a stream is removed.
func (c *Content) OnStreamRemoved(f func(*Stream, CallStateReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStreamRemoved = f
}

// OnNewMediaDescriptionOffer sets the handler fired when a description
// becomes the current offer.
func (c *Content) OnNewMediaDescriptionOffer(f func(*MediaDescription)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNewOffer = f
}

// OnMediaDescriptionOfferDone sets the handler fired when the current offer
// resolves.
func (c *Content) OnMediaDescriptionOfferDone(f func(*MediaDescription)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOfferDone = f
}

// OnLocalMediaDescriptionChanged sets the handler fired when a participant's
// local description is replaced.
func (c *Content) OnLocalMediaDescriptionChanged(f func(Handle, MediaDescriptionProperties)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLocalDescriptionChanged = f
}

// OnRemoteMediaDescriptionsChanged sets the handler fired when a
// participant's remote description changes.
func (c *Content) OnRemoteMediaDescriptionsChanged(f func(Handle, MediaDescriptionProperties)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRemoteDescriptionsChanged = f
}

// OnDTMFChanged sets the handler fired on DTMF event or state updates.
func (c *Content) OnDTMFChanged(f func(DTMFEvent, SendingState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDTMFChanged = f
}

// AddStream creates and registers a stream towards remoteContact. If
// locallyRequested, local sending is requested immediately; otherwise the
// stream is treated as an incoming bidirectional proposal.
func (c *Content) AddStream(remoteContact Handle, transport StreamTransportType, locallyRequested bool) (*Stream, error) {
	if c.call.Ended() {
		return nil, &callerr.NotAvailableError{Err: ErrCallEnded}
	}

	c.mu.Lock()
	if c.removed {
		c.mu.Unlock()
		return nil, &callerr.NotAvailableError{Err: ErrContentRemoved}
	}
	id := c.nextStreamID
	c.nextStreamID++
	c.mu.Unlock()

	// Construction may call into the engine; keep it outside the lock.
	s := newStream(c, id, remoteContact, transport, locallyRequested)

	c.mu.Lock()
	c.streams = append(c.streams, s)
	handler := c.onStreamAdded
	c.mu.Unlock()

	if handler != nil {
		handler(s)
	}
	return s, nil
}

// RemoveStream removes a stream. If it was the last one, the call is told
// and decides whether the content survives.
func (c *Content) RemoveStream(s *Stream, reason CallStateReason) {
	c.mu.Lock()
	found := false
	for i, existing := range c.streams {
		if existing == s {
			c.streams = append(c.streams[:i], c.streams[i+1:]...)
			found = true
			break
		}
	}
	empty := len(c.streams) == 0
	handler := c.onStreamRemoved
	c.mu.Unlock()

	if !found {
		return
	}
	s.markRemoved()
	if handler != nil && !c.call.Ended() {
		handler(s, reason)
	}
	if empty {
		c.call.contentLostLastStream(c, reason)
	}
}

// Streams returns a copy of the stream list.
func (c *Content) Streams() []*Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Stream(nil), c.streams...)
}

// Stream returns the stream with the given id.
func (c *Content) Stream(id uint32) (*Stream, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.streams {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}

// OfferMediaDescription submits a description for negotiation. This is the
// content's primary externally triggered negotiation entry point; the
// returned channel resolves per the offer queue's FIFO rules.
func (c *Content) OfferMediaDescription(d *MediaDescription) <-chan OfferResult {
	c.call.metrics.offerEnqueued()
	return c.queue.Enqueue(d)
}

// applyAccepted installs accepted properties as the participant's new local
// and remote description state.
func (c *Content) applyAccepted(contact Handle, props MediaDescriptionProperties) {
	c.mu.Lock()
	c.localDescriptions[contact] = props
	c.remoteDescriptions[contact] = props
	localHandler := c.onLocalDescriptionChanged
	remoteHandler := c.onRemoteDescriptionsChanged
	c.mu.Unlock()

	if localHandler != nil {
		localHandler(contact, props)
	}
	if remoteHandler != nil {
		remoteHandler(contact, props)
	}
}

// UpdateLocalMediaDescription replaces a participant's local description out
// of band. It must not race with the offer queue: while an offer is
// outstanding the update is refused.
func (c *Content) UpdateLocalMediaDescription(contact Handle, props MediaDescriptionProperties) error {
	if c.queue.HasOutstanding() {
		return &callerr.NotAvailableError{Err: ErrOfferOutstanding}
	}
	if len(props.Codecs) == 0 {
		return &callerr.InvalidArgumentError{Err: ErrCodecsEmpty}
	}
	if props.RemoteContact != 0 && props.RemoteContact != contact {
		return &callerr.InvalidArgumentError{Err: ErrRemoteContactMismatch}
	}

	c.mu.Lock()
	if c.removed {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrContentRemoved}
	}
	if _, ok := c.localDescriptions[contact]; !ok {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrNoLocalDescription}
	}
	c.localDescriptions[contact] = props
	handler := c.onLocalDescriptionChanged
	c.mu.Unlock()

	if handler != nil {
		handler(contact, props)
	}
	return nil
}

// LocalMediaDescription returns the current local description for a
// participant.
func (c *Content) LocalMediaDescription(contact Handle) (MediaDescriptionProperties, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	props, ok := c.localDescriptions[contact]
	return props, ok
}

// RemoteMediaDescriptions returns a copy of the remote description table.
func (c *Content) RemoteMediaDescriptions() map[Handle]MediaDescriptionProperties {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Handle]MediaDescriptionProperties, len(c.remoteDescriptions))
	for contact, props := range c.remoteDescriptions {
		out[contact] = props
	}
	return out
}

// StartTone begins sending a DTMF tone. DTMF is fire-and-forget: there is no
// queue, a tone in progress refuses the next one.
func (c *Content) StartTone(event DTMFEvent) error {
	c.mu.Lock()
	if c.removed {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrContentRemoved}
	}
	if c.dtmfState != SendingStateNone {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrToneInProgress}
	}
	c.dtmfEvent = event
	c.dtmfState = SendingStatePendingSend
	handler := c.onDTMFChanged
	c.mu.Unlock()

	if handler != nil {
		handler(event, SendingStatePendingSend)
	}
	return nil
}

// StopTone asks for the current tone to stop.
func (c *Content) StopTone() error {
	c.mu.Lock()
	if c.dtmfState != SendingStateSending {
		c.mu.Unlock()
		return &callerr.NotAvailableError{Err: ErrNoToneInProgress}
	}
	c.dtmfState = SendingStatePendingStopSending
	event := c.dtmfEvent
	handler := c.onDTMFChanged
	c.mu.Unlock()

	if handler != nil {
		handler(event, SendingStatePendingStopSending)
	}
	return nil
}

// CompleteDTMFStateChange commits a pending DTMF transition on behalf of the
// engine: PendingSend to Sending, PendingStopSending to None.
func (c *Content) CompleteDTMFStateChange(target SendingState) error {
	c.mu.Lock()
	legal := (target == SendingStateSending && c.dtmfState == SendingStatePendingSend) ||
		(target == SendingStateNone && c.dtmfState == SendingStatePendingStopSending)
	if !legal {
		c.mu.Unlock()
		return &callerr.InvalidTransitionError{Err: ErrDTMFStateNotReachable}
	}
	c.dtmfState = target
	event := c.dtmfEvent
	handler := c.onDTMFChanged
	c.mu.Unlock()

	if handler != nil {
		handler(event, target)
	}
	return nil
}

// DTMFState returns the current tone and its sending state.
func (c *Content) DTMFState() (DTMFEvent, SendingState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dtmfEvent, c.dtmfState
}

// Fail removes this content from its call with the given reason.
func (c *Content) Fail(reason CallStateReason) {
	c.call.RemoveContent(c, reason)
}

// Removed reports whether the content has been removed from its call.
func (c *Content) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// teardown cancels the offer queue and detaches the streams. Stream and
// offer teardown fire their cancellations; no add/remove events fire here.
func (c *Content) teardown() {
	c.mu.Lock()
	if c.removed {
		c.mu.Unlock()
		return
	}
	c.removed = true
	streams := append([]*Stream(nil), c.streams...)
	c.streams = nil
	c.mu.Unlock()

	for _, s := range streams {
		s.markRemoved()
	}
	c.queue.Close()
	c.log.Debugf("content %d (%s) torn down", c.id, c.name)
}
