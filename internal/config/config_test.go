package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateGateConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errMsg    string
	}{
		{
			name: "valid gate config",
			config: &Config{
				Gate: GateConfig{
					TokenSecret:   "0123456789abcdef",
					TokenValidity: 15 * time.Minute,
				},
			},
			wantError: false,
		},
		{
			name:      "missing token secret",
			config:    &Config{},
			wantError: true,
			errMsg:    "gate.token_secret is required",
		},
		{
			name: "short token secret",
			config: &Config{
				Gate: GateConfig{TokenSecret: "too-short"},
			},
			wantError: true,
			errMsg:    "at least 16 characters",
		},
		{
			name: "token validity below minimum",
			config: &Config{
				Gate: GateConfig{
					TokenSecret:   "0123456789abcdef",
					TokenValidity: 30 * time.Second,
				},
			},
			wantError: true,
			errMsg:    "cannot be less than 1 minute",
		},
		{
			name: "negative presentation delay",
			config: &Config{
				Gate: GateConfig{
					TokenSecret:       "0123456789abcdef",
					PresentationDelay: -time.Second,
				},
			},
			wantError: true,
			errMsg:    "cannot be negative",
		},
		{
			name: "poll interval below minimum",
			config: &Config{
				Gate: GateConfig{
					TokenSecret:  "0123456789abcdef",
					PollInterval: 250 * time.Millisecond,
				},
			},
			wantError: true,
			errMsg:    "poll_interval cannot be less than 1 second",
		},
		{
			name: "extended form shape",
			config: &Config{
				Gate: GateConfig{
					TokenSecret: "0123456789abcdef",
					Form:        FormConfig{Shape: "extended"},
				},
			},
			wantError: false,
		},
		{
			name: "invalid form shape",
			config: &Config{
				Gate: GateConfig{
					TokenSecret: "0123456789abcdef",
					Form:        FormConfig{Shape: "fancy"},
				},
			},
			wantError: true,
			errMsg:    "invalid form shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validateGateConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("validateGateConfig() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateGateConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateGateConfig() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidateGateConfigAppliesDefaults(t *testing.T) {
	cfg := &Config{
		Gate: GateConfig{TokenSecret: "0123456789abcdef"},
	}

	if err := cfg.validateGateConfig(); err != nil {
		t.Fatalf("validateGateConfig() unexpected error = %v", err)
	}

	if cfg.Gate.TokenValidity != DefaultGateConfig.TokenValidity {
		t.Errorf("token validity = %v, want %v", cfg.Gate.TokenValidity, DefaultGateConfig.TokenValidity)
	}

	if cfg.Gate.PresentationDelay != DefaultGateConfig.PresentationDelay {
		t.Errorf("presentation delay = %v, want %v", cfg.Gate.PresentationDelay, DefaultGateConfig.PresentationDelay)
	}

	if cfg.Gate.PollInterval != DefaultGateConfig.PollInterval {
		t.Errorf("poll interval = %v, want %v", cfg.Gate.PollInterval, DefaultGateConfig.PollInterval)
	}

	if cfg.Gate.Form.Shape != "basic" {
		t.Errorf("form shape = %q, want %q", cfg.Gate.Form.Shape, "basic")
	}
}

func TestValidateLedgerConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errMsg    string
	}{
		{
			name:      "empty config applies defaults",
			config:    &Config{},
			wantError: false,
		},
		{
			name: "valid redis backend",
			config: &Config{
				Ledger: LedgerConfig{Backend: "redis"},
				Redis:  &RedisConfig{Address: "localhost:6379"},
			},
			wantError: false,
		},
		{
			name: "redis backend without redis config",
			config: &Config{
				Ledger: LedgerConfig{Backend: "redis"},
			},
			wantError: true,
			errMsg:    "redis configuration must be set",
		},
		{
			name: "postgres backend without storage config",
			config: &Config{
				Ledger: LedgerConfig{Backend: "postgres"},
			},
			wantError: true,
			errMsg:    "storage configuration must be set",
		},
		{
			name: "invalid backend",
			config: &Config{
				Ledger: LedgerConfig{Backend: "sqlite"},
			},
			wantError: true,
			errMsg:    "invalid ledger backend",
		},
		{
			name: "retention equal to cooldown",
			config: &Config{
				Ledger: LedgerConfig{
					Cooldown:  time.Hour,
					Retention: time.Hour,
				},
			},
			wantError: true,
			errMsg:    "must be greater than ledger.cooldown",
		},
		{
			name: "retention below cooldown",
			config: &Config{
				Ledger: LedgerConfig{
					Cooldown:  time.Hour,
					Retention: 30 * time.Minute,
				},
			},
			wantError: true,
			errMsg:    "must be greater than ledger.cooldown",
		},
		{
			name: "cleanup interval below minimum",
			config: &Config{
				Ledger: LedgerConfig{CleanupInterval: 10 * time.Second},
			},
			wantError: true,
			errMsg:    "cleanup_interval cannot be less than 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validateLedgerConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("validateLedgerConfig() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateLedgerConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateLedgerConfig() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidateLedgerConfigAppliesDefaults(t *testing.T) {
	cfg := &Config{}

	if err := cfg.validateLedgerConfig(); err != nil {
		t.Fatalf("validateLedgerConfig() unexpected error = %v", err)
	}

	if cfg.Ledger.Backend != "memory" {
		t.Errorf("backend = %q, want %q", cfg.Ledger.Backend, "memory")
	}

	if cfg.Ledger.Cooldown != DefaultLedgerConfig.Cooldown {
		t.Errorf("cooldown = %v, want %v", cfg.Ledger.Cooldown, DefaultLedgerConfig.Cooldown)
	}

	if cfg.Ledger.Retention != DefaultLedgerConfig.Retention {
		t.Errorf("retention = %v, want %v", cfg.Ledger.Retention, DefaultLedgerConfig.Retention)
	}

	if cfg.Ledger.Retention <= cfg.Ledger.Cooldown {
		t.Errorf("default retention %v does not exceed default cooldown %v", cfg.Ledger.Retention, cfg.Ledger.Cooldown)
	}
}

func TestValidateRedisConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errMsg    string
	}{
		{
			name: "valid redis config",
			config: &Config{
				Redis: &RedisConfig{Address: "localhost:6379"},
			},
			wantError: false,
		},
		{
			name:      "nil redis config",
			config:    &Config{},
			wantError: true,
			errMsg:    "redis config is nil",
		},
		{
			name: "missing address",
			config: &Config{
				Redis: &RedisConfig{},
			},
			wantError: true,
			errMsg:    "redis address is required",
		},
		{
			name: "address without port",
			config: &Config{
				Redis: &RedisConfig{Address: "localhost"},
			},
			wantError: true,
			errMsg:    "invalid redis address format",
		},
		{
			name: "colliding indices",
			config: &Config{
				Redis: &RedisConfig{
					Address:       "localhost:6379",
					SessionIndex:  1,
					CooldownIndex: 1,
					LeaderIndex:   2,
				},
			},
			wantError: true,
			errMsg:    "should be different",
		},
		{
			name: "index above maximum",
			config: &Config{
				Redis: &RedisConfig{
					Address:       "localhost:6379",
					SessionIndex:  0,
					CooldownIndex: 1,
					LeaderIndex:   16,
				},
			},
			wantError: true,
			errMsg:    "exceeds typical maximum",
		},
		{
			name: "sentinel without master name",
			config: &Config{
				Redis: &RedisConfig{
					Address:  "localhost:6379",
					Sentinel: &RedisSentinelConfig{SentinelAddresses: []string{"localhost:26379"}},
				},
			},
			wantError: true,
			errMsg:    "master_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validateRedisConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("validateRedisConfig() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateRedisConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateRedisConfig() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidateNotificationsConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errMsg    string
	}{
		{
			name:      "webhook url is optional",
			config:    &Config{},
			wantError: false,
		},
		{
			name: "valid webhook url",
			config: &Config{
				Notifications: NotificationsConfig{WebhookURL: "https://hooks.example.com/abc"},
			},
			wantError: false,
		},
		{
			name: "invalid webhook scheme",
			config: &Config{
				Notifications: NotificationsConfig{WebhookURL: "ftp://hooks.example.com/abc"},
			},
			wantError: true,
			errMsg:    "must have http or https scheme",
		},
		{
			name: "timeout above maximum",
			config: &Config{
				Notifications: NotificationsConfig{Timeout: 5 * time.Minute},
			},
			wantError: true,
			errMsg:    "cannot be more than 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validateNotificationsConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("validateNotificationsConfig() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateNotificationsConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateNotificationsConfig() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidateThrottleConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errMsg    string
	}{
		{
			name:      "disabled throttle skips validation",
			config:    &Config{Throttle: ThrottleConfig{Enabled: false, RPS: -5}},
			wantError: false,
		},
		{
			name:      "enabled throttle applies defaults",
			config:    &Config{Throttle: ThrottleConfig{Enabled: true}},
			wantError: false,
		},
		{
			name:      "negative rps",
			config:    &Config{Throttle: ThrottleConfig{Enabled: true, RPS: -1}},
			wantError: true,
			errMsg:    "throttle.rps must be positive",
		},
		{
			name:      "negative burst",
			config:    &Config{Throttle: ThrottleConfig{Enabled: true, RPS: 5, Burst: -1}},
			wantError: true,
			errMsg:    "throttle.burst must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validateThrottleConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("validateThrottleConfig() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateThrottleConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateThrottleConfig() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
server:
  port: 9090
log:
  level: debug
  format: json
gate:
  token_secret: "file-secret-0123456789"
  token_validity: 10m
ledger:
  backend: memory
  cooldown: 5m
  retention: 20m
notifications:
  webhook_url: "https://hooks.example.com/submissions"
`

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}

	if cfg.Gate.TokenSecret != "file-secret-0123456789" {
		t.Errorf("token secret = %q, want value from file", cfg.Gate.TokenSecret)
	}

	if cfg.Gate.TokenValidity != 10*time.Minute {
		t.Errorf("token validity = %v, want 10m", cfg.Gate.TokenValidity)
	}

	if cfg.Ledger.Cooldown != 5*time.Minute {
		t.Errorf("cooldown = %v, want 5m", cfg.Ledger.Cooldown)
	}

	// Defaults fill in everything the file left out.
	if cfg.Sessions.Name != DefaultSessionConfig.Name {
		t.Errorf("session name = %q, want default %q", cfg.Sessions.Name, DefaultSessionConfig.Name)
	}

	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("cors allowed origins = %v, want [*]", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	content := `
gate:
  token_secret: "file-secret-0123456789"
`

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv(EnvGateTokenSecret, "env-secret-0123456789")
	t.Setenv(EnvNotificationsWebhookURL, "https://hooks.example.com/from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error = %v", err)
	}

	if cfg.Gate.TokenSecret != "env-secret-0123456789" {
		t.Errorf("token secret = %q, want value from environment", cfg.Gate.TokenSecret)
	}

	if cfg.Notifications.WebhookURL != "https://hooks.example.com/from-env" {
		t.Errorf("webhook url = %q, want value from environment", cfg.Notifications.WebhookURL)
	}
}

func TestLoadConfigRejectsRetentionInsideCooldown(t *testing.T) {
	content := `
gate:
  token_secret: "file-secret-0123456789"
ledger:
  cooldown: 1h
  retention: 30m
`

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() expected error but got none")
	}

	if !strings.Contains(err.Error(), "must be greater than ledger.cooldown") {
		t.Errorf("LoadConfig() error = %v, want retention validation error", err)
	}
}
