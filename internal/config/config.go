package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
	Email    EmailConfig    `mapstructure:"email" yaml:"email"`
	Google   GoogleConfig   `mapstructure:"google" yaml:"google"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Timeouts TimeoutConfig  `mapstructure:"timeouts" yaml:"timeouts"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
}

// AppConfig holds deployment-level settings
type AppConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Environment is "development" or "production". Error details are only
	// exposed to clients in development.
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// IsDevelopment reports whether the service runs in development mode
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	// Enabled switches the rate limiter to the shared Redis store. When
	// disabled the limiter keeps its windows in process memory.
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	// TrustedProxies are peer IPs or CIDRs whose X-Forwarded-For header is
	// honoured. Empty means the connection address is always the client.
	TrustedProxies []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single
// host prefix.
func (s SecurityConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid security.trusted_proxies entry %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid security.trusted_proxies entry %q: %w", raw, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// RateLimitingConfig holds per-route-family rate limits
type RateLimitingConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Application  RateLimitRule `mapstructure:"application" yaml:"application"`
	Career       RateLimitRule `mapstructure:"career" yaml:"career"`
	Contact      RateLimitRule `mapstructure:"contact" yaml:"contact"`
	Subscription RateLimitRule `mapstructure:"subscription" yaml:"subscription"`
	Email        RateLimitRule `mapstructure:"email" yaml:"email"`
}

// RateLimitRule is a request budget over a sliding window
type RateLimitRule struct {
	Limit  int           `mapstructure:"limit" yaml:"limit"`
	Window time.Duration `mapstructure:"window" yaml:"window"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the mail transport to use: "smtp", "gmail" or "ses".
	Provider    string `mapstructure:"provider" yaml:"provider"`
	FromName    string `mapstructure:"from_name" yaml:"from_name"`
	FromAddress string `mapstructure:"from_address" yaml:"from_address"`
	ReplyTo     string `mapstructure:"reply_to" yaml:"reply_to"`
	// AdminAddress receives admin notifications and is copied on owner notifications.
	AdminAddress string      `mapstructure:"admin_address" yaml:"admin_address"`
	SMTP         SMTPConfig  `mapstructure:"smtp" yaml:"smtp"`
	Gmail        GmailConfig `mapstructure:"gmail" yaml:"gmail"`
	SES          SESConfig   `mapstructure:"ses" yaml:"ses"`
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host               string `mapstructure:"host" yaml:"host"`
	Port               int    `mapstructure:"port" yaml:"port"`
	Username           string `mapstructure:"username" yaml:"username"`
	Password           string `mapstructure:"password" yaml:"password"`
	StartTLS           bool   `mapstructure:"starttls" yaml:"starttls"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content. When
	// empty the shared Google service account is used.
	CredentialsJSON string `mapstructure:"credentials_json" yaml:"credentials_json"`
}

// SESConfig holds Amazon SES configuration
type SESConfig struct {
	Region string `mapstructure:"region" yaml:"region"`
}

// GoogleConfig holds the service account used for Sheets, Drive and Gmail
type GoogleConfig struct {
	// CredentialsJSON takes precedence over the individual fields below.
	CredentialsJSON string `mapstructure:"credentials_json" yaml:"credentials_json"`
	ProjectID       string `mapstructure:"project_id" yaml:"project_id"`
	PrivateKeyID    string `mapstructure:"private_key_id" yaml:"private_key_id"`
	PrivateKey      string `mapstructure:"private_key" yaml:"private_key"`
	ClientEmail     string `mapstructure:"client_email" yaml:"client_email"`
	ClientID        string `mapstructure:"client_id" yaml:"client_id"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
	DriveFolderID   string `mapstructure:"drive_folder_id" yaml:"drive_folder_id"`
	// AppendsPerSecond paces spreadsheet writes under the Sheets API quota.
	AppendsPerSecond float64 `mapstructure:"appends_per_second" yaml:"appends_per_second"`
}

// Configured reports whether any service account credentials were supplied
func (c GoogleConfig) Configured() bool {
	return c.CredentialsJSON != "" || (c.ClientEmail != "" && c.PrivateKey != "")
}

// StorageConfig selects where uploaded resumes are stored
type StorageConfig struct {
	// Provider is "drive", "minio" or "none".
	Provider      string      `mapstructure:"provider" yaml:"provider"`
	MaxUploadSize int64       `mapstructure:"max_upload_size" yaml:"max_upload_size"`
	MinIO         MinIOConfig `mapstructure:"minio" yaml:"minio"`
}

// MinIOConfig holds S3-compatible object storage configuration
type MinIOConfig struct {
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey  string        `mapstructure:"access_key" yaml:"access_key"`
	SecretKey  string        `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket     string        `mapstructure:"bucket" yaml:"bucket"`
	Region     string        `mapstructure:"region" yaml:"region"`
	UseSSL     bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	LinkExpiry time.Duration `mapstructure:"link_expiry" yaml:"link_expiry"`
}

// DispatchConfig controls how notifications relate to the response
type DispatchConfig struct {
	// Mode is "sync" (await notifications) or "async" (respond immediately).
	Mode string `mapstructure:"mode" yaml:"mode"`
	// AwaitRowLog makes the request wait for the spreadsheet append.
	AwaitRowLog bool `mapstructure:"await_row_log" yaml:"await_row_log"`
}

// TimeoutConfig holds per-call deadlines for external collaborators
type TimeoutConfig struct {
	Verify time.Duration `mapstructure:"verify" yaml:"verify"`
	Send   time.Duration `mapstructure:"send" yaml:"send"`
	Upload time.Duration `mapstructure:"upload" yaml:"upload"`
	RowLog time.Duration `mapstructure:"row_log" yaml:"row_log"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
	Protocol    string  `mapstructure:"protocol" yaml:"protocol"`
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

// legacyEnv maps configuration keys to the unprefixed variable names used by
// existing deployments.
var legacyEnv = map[string][]string{
	"app.environment":         {"NODE_ENV", "APP_ENV"},
	"server.port":             {"PORT"},
	"email.from_name":         {"FROM_NAME"},
	"email.from_address":      {"FROM_EMAIL"},
	"email.reply_to":          {"REPLY_TO_EMAIL"},
	"email.admin_address":     {"ADMIN_EMAIL"},
	"email.smtp.host":         {"SMTP_HOST"},
	"email.smtp.port":         {"SMTP_PORT"},
	"email.smtp.username":     {"SMTP_USER"},
	"email.smtp.password":     {"SMTP_PASS"},
	"google.project_id":       {"GOOGLE_PROJECT_ID"},
	"google.private_key_id":   {"GOOGLE_PRIVATE_KEY_ID"},
	"google.private_key":      {"GOOGLE_PRIVATE_KEY"},
	"google.client_email":     {"GOOGLE_CLIENT_EMAIL"},
	"google.client_id":        {"GOOGLE_CLIENT_ID"},
	"google.spreadsheet_id":   {"GOOGLE_SHEETS_ID"},
	"google.drive_folder_id":  {"GOOGLE_DRIVE_FOLDER_ID"},
	"google.credentials_json": {"GOOGLE_CREDENTIALS_JSON"},
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/intake")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		// The prefixed name stays first so it wins over the legacy alias.
		args := append([]string{key, "INTAKE_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Dispatch.Mode {
	case "sync", "async":
	default:
		return fmt.Errorf("invalid dispatch.mode %q: must be sync or async", c.Dispatch.Mode)
	}
	switch c.Email.Provider {
	case "smtp", "gmail", "ses":
	default:
		return fmt.Errorf("invalid email.provider %q: must be smtp, gmail or ses", c.Email.Provider)
	}
	switch c.Storage.Provider {
	case "drive", "minio", "none":
	default:
		return fmt.Errorf("invalid storage.provider %q: must be drive, minio or none", c.Storage.Provider)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be positive")
	}
	if _, err := c.Security.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Redis.Password = mask(c.Redis.Password)
	c.Email.SMTP.Password = mask(c.Email.SMTP.Password)
	c.Email.Gmail.CredentialsJSON = mask(c.Email.Gmail.CredentialsJSON)
	c.Google.CredentialsJSON = mask(c.Google.CredentialsJSON)
	c.Google.PrivateKey = mask(c.Google.PrivateKey)
	c.Storage.MinIO.SecretKey = mask(c.Storage.MinIO.SecretKey)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Intake")
	v.SetDefault("app.environment", "production")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Rate limiting defaults
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.trusted_proxies", []string{})
	v.SetDefault("security.rate_limiting.application.limit", 5)
	v.SetDefault("security.rate_limiting.application.window", "15m")
	v.SetDefault("security.rate_limiting.career.limit", 100)
	v.SetDefault("security.rate_limiting.career.window", "1m")
	v.SetDefault("security.rate_limiting.contact.limit", 5)
	v.SetDefault("security.rate_limiting.contact.window", "15m")
	v.SetDefault("security.rate_limiting.subscription.limit", 10)
	v.SetDefault("security.rate_limiting.subscription.window", "15m")
	v.SetDefault("security.rate_limiting.email.limit", 5)
	v.SetDefault("security.rate_limiting.email.window", "15m")

	// Email defaults
	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.from_name", "Intake")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.reply_to", "")
	v.SetDefault("email.admin_address", "")
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.starttls", true)
	v.SetDefault("email.smtp.insecure_skip_verify", false)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.gmail.credentials_json", "")
	v.SetDefault("email.ses.region", "us-east-1")

	// Google defaults
	v.SetDefault("google.appends_per_second", 1.0)

	// Storage defaults
	v.SetDefault("storage.provider", "drive")
	v.SetDefault("storage.max_upload_size", 10<<20)
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "resumes")
	v.SetDefault("storage.minio.region", "us-east-1")
	v.SetDefault("storage.minio.use_ssl", true)
	v.SetDefault("storage.minio.link_expiry", "168h")

	// Dispatch defaults
	v.SetDefault("dispatch.mode", "sync")
	v.SetDefault("dispatch.await_row_log", false)

	// Timeout defaults
	v.SetDefault("timeouts.verify", "10s")
	v.SetDefault("timeouts.send", "30s")
	v.SetDefault("timeouts.upload", "30s")
	v.SetDefault("timeouts.row_log", "30s")

	// Observability defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "intake")
	v.SetDefault("tracing.protocol", "grpc")
	v.SetDefault("tracing.sample_ratio", 1.0)
}
