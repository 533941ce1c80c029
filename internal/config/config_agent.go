package config

import "time"

// Default agent tuning values applied when no source provides them.
const (
	// DefaultDebounceDelay is the quiet period before an automatic push.
	DefaultDebounceDelay = 3 * time.Second

	// DefaultPullInterval is how often the background worker refreshes the
	// remote snapshot.
	DefaultPullInterval = 5 * time.Minute

	// DefaultRequestTimeout bounds one outbound blob request.
	DefaultRequestTimeout = 30 * time.Second
)

// AgentConfig is the sync agent's configuration view assembled from
// [StructuredConfig].
type AgentConfig struct {
	// Adapter contains the remote blob service address and timeouts.
	Adapter Adapter
	// Local contains the agent's local database settings.
	Local Local
	// Sync contains debounce, pull interval, and role settings.
	Sync Sync
}

// applyDefaults fills tuning knobs that no configuration source provided.
// The local database path and remote address have no safe defaults and stay
// subject to validation instead.
func (cfg *AgentConfig) applyDefaults() {
	if cfg.Sync.DebounceDelay == 0 {
		cfg.Sync.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.Sync.PullInterval == 0 {
		cfg.Sync.PullInterval = DefaultPullInterval
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Sync.Role == "" {
		cfg.Sync.Role = "admin"
	}
}
