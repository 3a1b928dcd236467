package config

import (
	"time"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	CORS          CORSConfig          `yaml:"cors"`
	Sessions      SessionConfig       `yaml:"sessions"`
	Gate          GateConfig          `yaml:"gate"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Throttle      ThrottleConfig      `yaml:"throttle"`
	Redis         *RedisConfig        `yaml:"redis"`
	Storage       *StorageConfig      `yaml:"storage"`
	Distributed   *DistributedConfig  `yaml:"distributed"`
}

type ServerConfig struct {
	Port        int                `yaml:"port"`
	ExternalURL string             `yaml:"external_url"`
	Debug       *ServerDebugConfig `yaml:"debug"`
}

var DefaultServerConfig = ServerConfig{
	Port: 8080,
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

// The gate is embedded on third-party pages, so cross-origin POSTs are the
// normal case rather than the exception.
var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

type SessionConfig struct {
	Store        string        `yaml:"store"`
	FixedTimeout time.Duration `yaml:"fixed_timeout"`
	Name         string        `yaml:"name"`
	Secure       bool          `yaml:"secure"`
}

var DefaultSessionConfig = SessionConfig{
	Store:        "memory",
	FixedTimeout: 24 * time.Hour,
	Name:         "gate_session",
	Secure:       true,
}

// GateConfig controls token admission: the shared secret tokens are minted
// against, how long a minted token stays valid, and the pacing the evaluate
// flow reports to clients.
type GateConfig struct {
	TokenSecret       string        `yaml:"token_secret"`
	TokenValidity     time.Duration `yaml:"token_validity"`
	PresentationDelay time.Duration `yaml:"presentation_delay"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	Form              FormConfig    `yaml:"form"`
}

var DefaultGateConfig = GateConfig{
	TokenValidity:     15 * time.Minute,
	PresentationDelay: 1500 * time.Millisecond,
	PollInterval:      5 * time.Second,
	Form:              FormConfig{Shape: "basic"},
}

type FormConfig struct {
	Shape string `yaml:"shape"` // "basic" or "extended"
}

type LedgerConfig struct {
	Backend         string        `yaml:"backend"` // "memory", "redis" or "postgres"
	Cooldown        time.Duration `yaml:"cooldown"`
	Retention       time.Duration `yaml:"retention"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

var DefaultLedgerConfig = LedgerConfig{
	Backend:         "memory",
	Cooldown:        30 * time.Minute,
	Retention:       time.Hour,
	CleanupInterval: 10 * time.Minute,
}

type NotificationsConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

var DefaultNotificationsConfig = NotificationsConfig{
	Timeout: 10 * time.Second,
}

type ThrottleConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

var DefaultThrottleConfig = ThrottleConfig{
	RPS:   5,
	Burst: 10,
}

type RedisConfig struct {
	Address       string               `yaml:"address"`
	Username      string               `yaml:"username"`
	Password      string               `yaml:"password"`
	Sentinel      *RedisSentinelConfig `yaml:"sentinel"`
	SessionIndex  int                  `yaml:"session_index"`
	CooldownIndex int                  `yaml:"cooldown_index"`
	LeaderIndex   int                  `yaml:"leader_index"`
}

var DefaultRedisConfig = RedisConfig{
	SessionIndex:  0,
	CooldownIndex: 1,
	LeaderIndex:   2,
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name"`
	SentinelAddresses []string `yaml:"addresses"`
	SentinelPassword  string   `yaml:"password"`
	SentinelUsername  string   `yaml:"username"`
}

type StorageConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type DistributedConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

var DefaultDistributedConfig = DistributedConfig{
	Enabled: false,
	TTL:     30 * time.Second,
}
