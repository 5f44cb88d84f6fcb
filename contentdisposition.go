package call

// ContentDisposition records how a content came to exist.
type ContentDisposition int

const (
	// ContentDispositionNone marks a content added after the call was
	// established.
	ContentDispositionNone ContentDisposition = iota

	// ContentDispositionInitial marks a content that was part of the
	// original call request or announcement.
	ContentDispositionInitial
)

func (d ContentDisposition) String() string {
	switch d {
	case ContentDispositionNone:
		return "none"
	case ContentDispositionInitial:
		return "initial"
	default:
		return ErrUnknownType.Error()
	}
}
