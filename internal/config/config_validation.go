package config

// validateServer checks that the final merged [StructuredConfig] satisfies
// the snapshot server's startup invariants.
func (cfg *StructuredConfig) validateServer() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Auth.TokenSignKey == "" || cfg.Auth.TokenIssuer == "" ||
		cfg.Auth.TokenDuration == 0 || cfg.Auth.PasswordHashKey == "" {
		return ErrInvalidAuthConfigs
	}

	return nil
}

// validate checks the sync agent's configuration view. It runs after
// applyDefaults, so only fields without safe defaults are required here.
func (cfg *AgentConfig) validate() error {
	if cfg.Local.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Role != "admin" && cfg.Sync.Role != "viewer" {
		return ErrInvalidSyncConfigs
	}

	return nil
}
