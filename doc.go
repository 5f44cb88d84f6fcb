// Package call implements the signaling core of a VoIP/video call channel:
// the Content/Stream hierarchy, the media-description offer/accept/reject
// protocol, per-direction flow-control state machines and the
// candidate/endpoint bookkeeping needed for ICE-style connectivity
// establishment. It negotiates intentions only; actual media transport is
// delegated to an external engine behind EngineHooks.
package call
