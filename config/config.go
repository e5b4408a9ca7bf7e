// Package config provides configuration loading for the dashboard server.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process configuration.
type Config struct {
	ListenAddr   string
	DatabasePath string
	JWTKey       string
	// Dashboard login pair. Single-operator auth; tenant-level user and
	// role management is a separate concern outside this service.
	AdminUser     string
	AdminPassword string
	// VaultKey is the 32-byte symmetric key protecting stored credentials,
	// hex encoded in the config source.
	VaultKey    [32]byte
	CORSOrigins []string
	LogLevel    string
	LogJSON     bool
	// HealthCheckSpec is the cron spec for the connection health sweep.
	// Empty disables the sweep.
	HealthCheckSpec string
}

// Load reads configuration from the given YAML file (optional) and the
// DASHBOARD_* environment, validating required keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8081")
	v.SetDefault("database_path", "dashboard.db")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "info")
	v.SetDefault("health_check_spec", "@every 1h")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:      v.GetString("listen_addr"),
		DatabasePath:    v.GetString("database_path"),
		JWTKey:          v.GetString("jwt_key"),
		AdminUser:       v.GetString("admin_user"),
		AdminPassword:   v.GetString("admin_password"),
		CORSOrigins:     v.GetStringSlice("cors_origins"),
		LogLevel:        v.GetString("log_level"),
		LogJSON:         v.GetBool("log_json"),
		HealthCheckSpec: v.GetString("health_check_spec"),
	}

	if cfg.JWTKey == "" {
		return nil, fmt.Errorf("jwt_key is required")
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("admin_user and admin_password are required")
	}

	rawKey := v.GetString("vault_key")
	if rawKey == "" {
		return nil, fmt.Errorf("vault_key is required")
	}
	key, err := hex.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("vault_key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("vault_key must be 32 bytes, got %d", len(key))
	}
	copy(cfg.VaultKey[:], key)

	return cfg, nil
}
