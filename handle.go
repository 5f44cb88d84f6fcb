package call

// Handle is a stable opaque identifier for a communication participant. The
// zero handle means "not yet bound", e.g. a multi-party stream before a
// member joins. Handles are resolved by an external HandleResolver; the core
// never allocates them.
type Handle uint32

// HandleResolver maps handles back to protocol identifiers. It is the only
// collaborator shared between calls and is read-only from the core's
// perspective.
type HandleResolver interface {
	// Inspect returns the protocol identifier for a handle, or an error if
	// the handle is not known.
	Inspect(Handle) (string, error)
}
