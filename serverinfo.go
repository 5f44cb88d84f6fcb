package call

import (
	"github.com/pion/stun/v3"

	"github.com/gotelepathy/call/pkg/callerr"
)

// STUNServer describes one STUN server the traversal engine may use for
// reflexive candidate discovery.
type STUNServer struct {
	URI string

	parsed *stun.URI
}

// NewSTUNServer validates a stun:/stuns: URI.
func NewSTUNServer(raw string) (STUNServer, error) {
	uri, err := stun.ParseURI(raw)
	if err != nil {
		return STUNServer{}, &callerr.InvalidArgumentError{Err: err}
	}
	if uri.Scheme != stun.SchemeTypeSTUN && uri.Scheme != stun.SchemeTypeSTUNS {
		return STUNServer{}, &callerr.InvalidArgumentError{Err: ErrNotSTUNScheme}
	}
	return STUNServer{URI: raw, parsed: uri}, nil
}

// Host returns the parsed server host.
func (s STUNServer) Host() string { return s.parsed.Host }

// Port returns the parsed server port.
func (s STUNServer) Port() int { return s.parsed.Port }

// RelayInfo describes one relay (TURN) server, including the credentials the
// traversal engine needs to allocate on it.
type RelayInfo struct {
	URI      string
	Username string
	Password string

	parsed *stun.URI
}

// NewRelayInfo validates a turn:/turns: URI and requires credentials, since
// an allocation cannot be made without them.
func NewRelayInfo(raw, username, password string) (RelayInfo, error) {
	uri, err := stun.ParseURI(raw)
	if err != nil {
		return RelayInfo{}, &callerr.InvalidArgumentError{Err: err}
	}
	if uri.Scheme != stun.SchemeTypeTURN && uri.Scheme != stun.SchemeTypeTURNS {
		return RelayInfo{}, &callerr.InvalidArgumentError{Err: ErrNotTURNScheme}
	}
	if username == "" || password == "" {
		return RelayInfo{}, &callerr.InvalidArgumentError{Err: ErrNoTURNCredentials}
	}
	uri.Username = username
	uri.Password = password
	return RelayInfo{URI: raw, Username: username, Password: password, parsed: uri}, nil
}

// Host returns the parsed relay host.
func (r RelayInfo) Host() string { return r.parsed.Host }

// Port returns the parsed relay port.
func (r RelayInfo) Port() int { return r.parsed.Port }
