package call

// Component identifies one transport component of a stream. Data carries the
// media itself, Control the out-of-band control flow (RTCP).
type Component int

const (
	// ComponentData is the media component.
	ComponentData Component = iota + 1

	// ComponentControl is the control component.
	ComponentControl
)

func (c Component) String() string {
	switch c {
	case ComponentData:
		return "data"
	case ComponentControl:
		return "control"
	default:
		return ErrUnknownType.Error()
	}
}
