package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ignite/deliverability-engine/internal/validation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	SES        SESConfig        `yaml:"ses"`
	Reputation ReputationConfig `yaml:"reputation"`
	Probe      ProbeConfig      `yaml:"probe"`
	Validation ValidationConfig `yaml:"validation"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int    `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// DatabaseConfig holds the Postgres event store connection.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig holds the reputation cache connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SESConfig holds AWS SES API configuration
type SESConfig struct {
	Region           string `yaml:"region"`
	AccessKey        string `yaml:"access_key"`
	SecretKey        string `yaml:"secret_key"`
	ConfigurationSet string `yaml:"configuration_set"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReputationConfig holds the external domain reputation service settings.
type ReputationConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ReputationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a score stays in Redis.
func (c ReputationConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ProbeConfig holds the sender identity and SMTP settings for probes.
type ProbeConfig struct {
	FromEmail          string `yaml:"from_email"`
	FromName           string `yaml:"from_name"`
	Subject            string `yaml:"subject"`
	HTML               string `yaml:"html"`
	SMTPPort           int    `yaml:"smtp_port"`
	HeloName           string `yaml:"helo_name"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds"`
}

// DialTimeout returns the per-connection timeout for MX and SMTP checks.
func (c ProbeConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// ValidationConfig overrides the heuristic word and domain lists.
type ValidationConfig struct {
	SpamLexicon        []string `yaml:"spam_lexicon"`
	LinkShorteners     []string `yaml:"link_shorteners"`
	DisposableDomains  []string `yaml:"disposable_domains"`
	UnsubscribeMarkers []string `yaml:"unsubscribe_markers"`
	AddressMarkers     []string `yaml:"address_markers"`
	ResponsiveMarkers  []string `yaml:"responsive_markers"`
	SubjectMaxLength   int      `yaml:"subject_max_length"`
}

// Lexicon converts the section into validation lists. Empty entries keep
// the built-in defaults.
func (c ValidationConfig) Lexicon() validation.Lexicon {
	return validation.Lexicon{
		SpamTerms:          c.SpamLexicon,
		LinkShorteners:     c.LinkShorteners,
		DisposableDomains:  c.DisposableDomains,
		UnsubscribeMarkers: c.UnsubscribeMarkers,
		AddressMarkers:     c.AddressMarkers,
		ResponsiveMarkers:  c.ResponsiveMarkers,
		SubjectMaxLength:   c.SubjectMaxLength,
	}
}

// ArchiveConfig holds where list reports and health snapshots are kept.
// An empty bucket or table disables that half of the archive.
type ArchiveConfig struct {
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	Region        string `yaml:"region"`
	AWSProfile    string `yaml:"aws_profile"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// ShouldRedactPII defaults to true when unset.
func (c LoggingConfig) ShouldRedactPII() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.Reputation.TimeoutSeconds == 0 {
		cfg.Reputation.TimeoutSeconds = 5
	}
	if cfg.Reputation.CacheTTLSeconds == 0 {
		cfg.Reputation.CacheTTLSeconds = 3600
	}
	if cfg.Probe.Subject == "" {
		cfg.Probe.Subject = "Deliverability check"
	}
	if cfg.Probe.SMTPPort == 0 {
		cfg.Probe.SMTPPort = 25
	}
	if cfg.Probe.HeloName == "" {
		cfg.Probe.HeloName = "localhost"
	}
	if cfg.Probe.DialTimeoutSeconds == 0 {
		cfg.Probe.DialTimeoutSeconds = 10
	}
	if cfg.Archive.S3Prefix == "" {
		cfg.Archive.S3Prefix = "list-reports"
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = cfg.SES.Region
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads config from file and overrides with environment variables
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("REPUTATION_BASE_URL"); v != "" {
		cfg.Reputation.BaseURL = v
	}
	if v := os.Getenv("REPUTATION_API_KEY"); v != "" {
		cfg.Reputation.APIKey = v
	}
	if v := os.Getenv("PROBE_FROM_EMAIL"); v != "" {
		cfg.Probe.FromEmail = v
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
	}
	if v := os.Getenv("ARCHIVE_DYNAMODB_TABLE"); v != "" {
		cfg.Archive.DynamoDBTable = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}
