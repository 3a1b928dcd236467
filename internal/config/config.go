package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/utils"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use -config or -c)")
	}

	// Read and parse YAML
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvGateTokenSecret         = "PULSEPASS_GATE_TOKEN_SECRET"
	EnvNotificationsWebhookURL = "PULSEPASS_NOTIFICATIONS_WEBHOOK_URL"
	EnvRedisPassword           = "PULSEPASS_REDIS_PASSWORD"
	EnvRedisUsername           = "PULSEPASS_REDIS_USERNAME"
	EnvRedisSentinelUsername   = "PULSEPASS_REDIS_SENTINEL_USERNAME"
	EnvRedisSentinelPassword   = "PULSEPASS_REDIS_SENTINEL_PASSWORD"
	EnvStorageHost             = "PULSEPASS_STORAGE_HOST"
	EnvStoragePort             = "PULSEPASS_STORAGE_PORT"
	EnvStorageUsername         = "PULSEPASS_STORAGE_USERNAME"
	EnvStoragePassword         = "PULSEPASS_STORAGE_PASSWORD"
	EnvStorageDatabase         = "PULSEPASS_STORAGE_DATABASE"
)

func applyEnvironmentOverrides(config *Config) {
	if tokenSecret := os.Getenv(EnvGateTokenSecret); tokenSecret != "" {
		config.Gate.TokenSecret = tokenSecret
	}

	if webhookURL := os.Getenv(EnvNotificationsWebhookURL); webhookURL != "" {
		config.Notifications.WebhookURL = webhookURL
	}

	if redisPassword := os.Getenv(EnvRedisPassword); redisPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Password = redisPassword
	}

	if redisUsername := os.Getenv(EnvRedisUsername); redisUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Username = redisUsername
	}

	if sentinelUsername := os.Getenv(EnvRedisSentinelUsername); sentinelUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelUsername = sentinelUsername
	}

	if sentinelPassword := os.Getenv(EnvRedisSentinelPassword); sentinelPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelPassword = sentinelPassword
	}

	if host := os.Getenv(EnvStorageHost); host != "" {
		if config.Storage == nil {
			config.Storage = &StorageConfig{}
		}
		config.Storage.Host = host
	}

	if portStr := os.Getenv(EnvStoragePort); portStr != "" {
		if config.Storage == nil {
			config.Storage = &StorageConfig{}
		}
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Storage.Port = port
		}
	}

	if username := os.Getenv(EnvStorageUsername); username != "" {
		if config.Storage == nil {
			config.Storage = &StorageConfig{}
		}
		config.Storage.Username = username
	}

	if password := os.Getenv(EnvStoragePassword); password != "" {
		if config.Storage == nil {
			config.Storage = &StorageConfig{}
		}
		config.Storage.Password = password
	}

	if database := os.Getenv(EnvStorageDatabase); database != "" {
		if config.Storage == nil {
			config.Storage = &StorageConfig{}
		}
		config.Storage.Database = database
	}
}

func validateConfig(config *Config) error {

	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	err = config.validateGateConfig()
	if err != nil {
		return err
	}

	err = config.validateLedgerConfig()
	if err != nil {
		return err
	}

	err = config.validateNotificationsConfig()
	if err != nil {
		return err
	}

	err = config.validateThrottleConfig()
	if err != nil {
		return err
	}

	if config.Sessions.Store == "redis" || config.Ledger.Backend == "redis" || (config.Distributed != nil && config.Distributed.Enabled) {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	err = config.validateDistributedConfig()
	if err != nil {
		return err
	}

	if config.Ledger.Backend == "postgres" {
		err = config.validateStorageConfig()
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.ExternalURL != "" {
		if err := validateURL(c.Server.ExternalURL, "server.external_url"); err != nil {
			return err
		}
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	} else {
		switch c.Log.Format {
		case "text", "json":
		default:
			return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	} else {
		switch c.Log.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
		}
	}

	return nil
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Sessions.Store == "" {
		c.Sessions.Store = DefaultSessionConfig.Store
	} else {
		switch c.Sessions.Store {
		case "memory", "redis":
		default:
			return fmt.Errorf("invalid session store: %s, options are 'memory' or 'redis'", c.Sessions.Store)
		}
	}

	if c.Sessions.Name == "" {
		c.Sessions.Name = DefaultSessionConfig.Name
	}

	if c.Sessions.FixedTimeout == 0 {
		c.Sessions.FixedTimeout = DefaultSessionConfig.FixedTimeout
	}

	return nil
}

var validFormShapes = []string{"basic", "extended"}

func (c *Config) validateGateConfig() error {
	if c.Gate.TokenSecret == "" {
		return fmt.Errorf("gate.token_secret is required")
	}

	if len(c.Gate.TokenSecret) < 16 {
		return fmt.Errorf("gate.token_secret must be at least 16 characters")
	}

	if c.Gate.TokenValidity == 0 {
		c.Gate.TokenValidity = DefaultGateConfig.TokenValidity
	} else if c.Gate.TokenValidity.Minutes() < 1 {
		return fmt.Errorf("gate.token_validity cannot be less than 1 minute")
	}

	if c.Gate.PresentationDelay < 0 {
		return fmt.Errorf("gate.presentation_delay cannot be negative")
	} else if c.Gate.PresentationDelay == 0 {
		c.Gate.PresentationDelay = DefaultGateConfig.PresentationDelay
	}

	if c.Gate.PollInterval == 0 {
		c.Gate.PollInterval = DefaultGateConfig.PollInterval
	} else if c.Gate.PollInterval.Seconds() < 1 {
		return fmt.Errorf("gate.poll_interval cannot be less than 1 second")
	}

	if c.Gate.Form.Shape == "" {
		c.Gate.Form.Shape = DefaultGateConfig.Form.Shape
	} else if !utils.IsStringInSlice(c.Gate.Form.Shape, validFormShapes) {
		return fmt.Errorf("invalid form shape: %s, options are 'basic' or 'extended'", c.Gate.Form.Shape)
	}

	return nil
}

func (c *Config) validateLedgerConfig() error {
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = DefaultLedgerConfig.Backend
	} else {
		switch c.Ledger.Backend {
		case "memory":
		case "redis":
			if c.Redis == nil {
				return fmt.Errorf("redis configuration must be set to use redis for the cooldown ledger")
			}
		case "postgres":
			if c.Storage == nil {
				return fmt.Errorf("storage configuration must be set to use postgres for the cooldown ledger")
			}
		default:
			return fmt.Errorf("invalid ledger backend: %s, options are 'memory', 'redis' or 'postgres'", c.Ledger.Backend)
		}
	}

	if c.Ledger.Cooldown == 0 {
		c.Ledger.Cooldown = DefaultLedgerConfig.Cooldown
	} else if c.Ledger.Cooldown < 0 {
		return fmt.Errorf("ledger.cooldown cannot be negative")
	}

	if c.Ledger.Retention == 0 {
		c.Ledger.Retention = DefaultLedgerConfig.Retention
	}

	// Records must outlive the window they gate, otherwise an active
	// cooldown could be purged out from under a device.
	if c.Ledger.Retention <= c.Ledger.Cooldown {
		return fmt.Errorf("ledger.retention (%s) must be greater than ledger.cooldown (%s)", c.Ledger.Retention, c.Ledger.Cooldown)
	}

	if c.Ledger.CleanupInterval == 0 {
		c.Ledger.CleanupInterval = DefaultLedgerConfig.CleanupInterval
	} else if c.Ledger.CleanupInterval.Minutes() < 1 {
		return fmt.Errorf("ledger.cleanup_interval cannot be less than 1 minute")
	}

	return nil
}

func (c *Config) validateNotificationsConfig() error {
	if c.Notifications.WebhookURL != "" {
		if err := validateURL(c.Notifications.WebhookURL, "notifications.webhook_url"); err != nil {
			return err
		}
	}

	if c.Notifications.Timeout == 0 {
		c.Notifications.Timeout = DefaultNotificationsConfig.Timeout
	} else if c.Notifications.Timeout.Minutes() > 1 {
		return fmt.Errorf("notifications.timeout cannot be more than 1 minute")
	}

	return nil
}

func (c *Config) validateThrottleConfig() error {
	if !c.Throttle.Enabled {
		return nil
	}

	if c.Throttle.RPS == 0 {
		c.Throttle.RPS = DefaultThrottleConfig.RPS
	} else if c.Throttle.RPS < 0 {
		return fmt.Errorf("throttle.rps must be positive, got %v", c.Throttle.RPS)
	}

	if c.Throttle.Burst == 0 {
		c.Throttle.Burst = DefaultThrottleConfig.Burst
	} else if c.Throttle.Burst < 0 {
		return fmt.Errorf("throttle.burst must be positive, got %d", c.Throttle.Burst)
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis config is nil")
	}

	if c.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
		return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
	}

	// Apply default indices if not set
	if c.Redis.SessionIndex == 0 && c.Redis.CooldownIndex == 0 && c.Redis.LeaderIndex == 0 {
		c.Redis.SessionIndex = DefaultRedisConfig.SessionIndex
		c.Redis.CooldownIndex = DefaultRedisConfig.CooldownIndex
		c.Redis.LeaderIndex = DefaultRedisConfig.LeaderIndex
	}

	if c.Redis.SessionIndex < 0 {
		return fmt.Errorf("redis session_index must be non-negative, got %d", c.Redis.SessionIndex)
	}

	if c.Redis.CooldownIndex < 0 {
		return fmt.Errorf("redis cooldown_index must be non-negative, got %d", c.Redis.CooldownIndex)
	}

	if c.Redis.LeaderIndex < 0 {
		return fmt.Errorf("redis leader_index must be non-negative, got %d", c.Redis.LeaderIndex)
	}

	if c.Redis.SessionIndex == c.Redis.CooldownIndex {
		return fmt.Errorf("redis session_index and cooldown_index should be different to avoid data collision (both are %d)", c.Redis.SessionIndex)
	}

	if c.Redis.LeaderIndex == c.Redis.CooldownIndex {
		return fmt.Errorf("redis leader_index and cooldown_index should be different to avoid data collision (both are %d)", c.Redis.LeaderIndex)
	}

	if c.Redis.LeaderIndex == c.Redis.SessionIndex {
		return fmt.Errorf("redis leader_index and session_index should be different to avoid data collision (both are %d)", c.Redis.LeaderIndex)
	}

	const maxRedisDB = 15
	if c.Redis.SessionIndex > maxRedisDB {
		return fmt.Errorf("redis session_index %d exceeds typical maximum of %d", c.Redis.SessionIndex, maxRedisDB)
	}

	if c.Redis.CooldownIndex > maxRedisDB {
		return fmt.Errorf("redis cooldown_index %d exceeds typical maximum of %d", c.Redis.CooldownIndex, maxRedisDB)
	}

	if c.Redis.LeaderIndex > maxRedisDB {
		return fmt.Errorf("redis leader_index %d exceeds typical maximum of %d", c.Redis.LeaderIndex, maxRedisDB)
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	}
	return nil
}

func (c *Config) validateDistributedConfig() error {
	if c.Distributed == nil {
		return nil
	}

	if !c.Distributed.Enabled {
		return nil
	}

	if c.Redis == nil {
		return fmt.Errorf("redis configuration must be set to use distributed coordination")
	}

	if c.Distributed.TTL.Seconds() <= 0 {
		c.Distributed.TTL = DefaultDistributedConfig.TTL
	} else if c.Distributed.TTL > time.Minute {
		return fmt.Errorf("distributed ttl cannot be more than 1 minute")
	}

	return nil
}

func (c *Config) validateStorageConfig() error {
	if c.Storage == nil {
		return fmt.Errorf("storage config is nil")
	}

	if c.Storage.Host == "" {
		return fmt.Errorf("storage.host is required when the postgres ledger backend is enabled")
	}

	if c.Storage.Port <= 0 || c.Storage.Port > 65535 {
		return fmt.Errorf("storage.port must be between 1 and 65535, got %d", c.Storage.Port)
	}

	if c.Storage.Database == "" {
		return fmt.Errorf("storage.database is required when the postgres ledger backend is enabled")
	}

	return nil
}
