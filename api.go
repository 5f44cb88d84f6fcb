package call

import (
	"github.com/pion/logging"
)

// API bundles the settings shared by the calls it creates. Callers with no
// special needs can use NewAPI() directly.
type API struct {
	settingEngine *SettingEngine
	metrics       *Metrics
}

// NewAPI creates an API with the supplied options applied.
func NewAPI(options ...func(*API)) *API {
	a := &API{}
	for _, option := range options {
		option(a)
	}

	if a.settingEngine == nil {
		a.settingEngine = &SettingEngine{}
	}
	if a.settingEngine.LoggerFactory == nil {
		a.settingEngine.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	return a
}

// WithSettingEngine makes the API use s.
func WithSettingEngine(s SettingEngine) func(a *API) {
	return func(a *API) {
		a.settingEngine = &s
	}
}

// WithMetrics makes the API record metrics for the calls it creates.
func WithMetrics(m *Metrics) func(a *API) {
	return func(a *API) {
		a.metrics = m
	}
}

// NewCall creates a call using this API's settings.
func (api *API) NewCall(config CallConfig) *Call {
	return newCall(config, api.settingEngine, api.metrics)
}
