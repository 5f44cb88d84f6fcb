package call

import (
	"github.com/pion/logging"
)

// SettingEngine allows influencing behavior shared by all calls an API
// creates: the engine hooks, the handle resolver and the connectivity server
// defaults seeded into every new stream's candidate store.
type SettingEngine struct {
	LoggerFactory logging.LoggerFactory

	engine      EngineHooks
	resolver    HandleResolver
	stunServers []STUNServer
	relayInfo   []RelayInfo
}

// SetEngineHooks installs the media engine boundary.
func (e *SettingEngine) SetEngineHooks(hooks EngineHooks) {
	e.engine = hooks
}

// SetHandleResolver installs the participant identity resolver used to
// validate contact handles.
func (e *SettingEngine) SetHandleResolver(resolver HandleResolver) {
	e.resolver = resolver
}

// SetSTUNServers parses and installs the default STUN server list.
func (e *SettingEngine) SetSTUNServers(uris []string) error {
	servers := make([]STUNServer, 0, len(uris))
	for _, raw := range uris {
		server, err := NewSTUNServer(raw)
		if err != nil {
			return err
		}
		servers = append(servers, server)
	}
	e.stunServers = servers
	return nil
}

// AddRelayServer parses a TURN URI with its credentials and appends it to
// the default relay list.
func (e *SettingEngine) AddRelayServer(uri, username, password string) error {
	info, err := NewRelayInfo(uri, username, password)
	if err != nil {
		return err
	}
	e.relayInfo = append(e.relayInfo, info)
	return nil
}
