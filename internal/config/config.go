package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"drinks-service/internal/auth"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envCORSAllowOrigins      = "CORS_ALLOW_ORIGINS"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envProfilingEnabled      = "ENABLE_PROFILING"
	envDBDriver              = "DB_DRIVER"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envDBAutoMigrate         = "DB_AUTO_MIGRATE"
	envAuthDomain            = "AUTH0_DOMAIN"
	envAuthAudience          = "API_AUDIENCE"
	envAuthIssuer            = "AUTH_ISSUER"
	envAuthAllowedAlgs       = "AUTH_ALLOWED_ALGS"
	envAuthJWKSURL           = "AUTH_JWKS_URL"
	envAuthDiscovery         = "AUTH_OIDC_DISCOVERY"
	envAuthFetchTimeout      = "AUTH_JWKS_FETCH_TIMEOUT"
	envAuthMinRefresh        = "AUTH_JWKS_MIN_REFRESH_INTERVAL"
	envAuthLeeway            = "AUTH_LEEWAY"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envMenuCacheTTL          = "MENU_CACHE_TTL"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envExportBucket          = "EXPORT_BUCKET"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultCORSAllowOrigins   = "*"
	defaultRateLimitRPS       = 100
	defaultRateLimitBurst     = 200
	defaultDBDriver           = DriverPostgres
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "coffee_shop"
	defaultDBUser             = "coffee_shop_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultAllowedAlgs        = "RS256"
	defaultJWKSFetchTimeout   = 5 * time.Second
	defaultJWKSMinRefresh     = 0
	defaultMenuCacheTTL       = 5 * time.Minute
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"

	jwksWellKnownPath  = "/.well-known/jwks.json"
	httpsScheme        = "https://"
	migrateURLScheme   = "pgx5"
	listSeparator      = ","
	sslModeQueryKey    = "sslmode"
	trailingSlash      = "/"

	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set when DB_DRIVER is postgres"
	errAudienceRequiredFmt     = "API_AUDIENCE must be set"
	errAllowedAlgsRequiredFmt  = "AUTH_ALLOWED_ALGS must list at least one algorithm"
	errAllowedAlgsInvalidFmt   = "AUTH_ALLOWED_ALGS: %w"
	errNegativeDurationFmt     = "%s must not be negative"
	errRegionRequiredFmt       = "REGION must be set"
	errExportBucketRequiredFmt = "EXPORT_BUCKET must be set"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
	RateLimitRPS     int
	RateLimitBurst   int
	Profiling        bool
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// AuthConfig describes the identity provider whose tokens are accepted.
// Issuer and JWKSURL default to the Auth0 conventions for Domain.
type AuthConfig struct {
	Domain             string
	Audience           string
	Issuer             string
	AllowedAlgs        []string
	JWKSURL            string
	Discovery          bool
	FetchTimeout       time.Duration
	MinRefreshInterval time.Duration
	Leeway             time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	MenuTTL  time.Duration
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ExportBucket    string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the environment and validates everything the API server needs.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}
	return cfg, nil
}

// LoadStorage is Load for the offline commands (migrate, export); the
// authorization settings are read but not required.
func LoadStorage() (*Config, error) {
	cfg := read()
	if err := cfg.validateStorage(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}
	return cfg, nil
}

func read() *Config {
	domain := normalizeDomain(os.Getenv(envAuthDomain))

	return &Config{
		Server: ServerConfig{
			Port:             getEnv(envPort, defaultServerPort),
			ReadTimeout:      getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:     getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout:  getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			CORSAllowOrigins: getListEnv(envCORSAllowOrigins, defaultCORSAllowOrigins),
			RateLimitRPS:     getIntEnv(envRateLimitRPS, defaultRateLimitRPS),
			RateLimitBurst:   getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
			Profiling:        getBoolEnv(envProfilingEnabled, false),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv(envDBDriver, defaultDBDriver)),
			Host:        getEnv(envDBHost, defaultDBHost),
			Port:        getIntEnv(envDBPort, defaultDBPort),
			Database:    getEnv(envDBName, defaultDBName),
			User:        getEnv(envDBUser, defaultDBUser),
			Password:    os.Getenv(envDBPassword),
			SSLMode:     getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns:    getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns:    getIntEnv(envDBMinConns, defaultDBMinConns),
			AutoMigrate: getBoolEnv(envDBAutoMigrate, false),
		},
		Auth: AuthConfig{
			Domain:             domain,
			Audience:           os.Getenv(envAuthAudience),
			Issuer:             getEnv(envAuthIssuer, defaultIssuer(domain)),
			AllowedAlgs:        getListEnv(envAuthAllowedAlgs, defaultAllowedAlgs),
			JWKSURL:            getEnv(envAuthJWKSURL, defaultJWKSURL(domain)),
			Discovery:          getBoolEnv(envAuthDiscovery, false),
			FetchTimeout:       getDurationEnv(envAuthFetchTimeout, defaultJWKSFetchTimeout),
			MinRefreshInterval: getDurationEnv(envAuthMinRefresh, defaultJWKSMinRefresh),
			Leeway:             getDurationEnv(envAuthLeeway, 0),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv(envRedisAddr),
			Password: os.Getenv(envRedisPassword),
			DB:       getIntEnv(envRedisDB, 0),
			MenuTTL:  getDurationEnv(envMenuCacheTTL, defaultMenuCacheTTL),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			ExportBucket:    os.Getenv(envExportBucket),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv(envLogLevel, defaultLogLevel)),
			Format: strings.ToLower(getEnv(envLogFormat, defaultLogFormat)),
		},
	}
}

func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

func (c *Config) validateStorage() error {
	if c.Server.Port == "" {
		return errors.New(errPortRequiredFmt)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return errors.New(errDBPasswordRequiredFmt)
		}
	case DriverMemory:
	default:
		return errors.New(messages.unsupportedValue(envDBDriver, c.Database.Driver, DriverPostgres, DriverMemory))
	}

	return nil
}

func (c *AuthConfig) Validate() error {
	if c.Issuer == "" {
		return errors.New(messages.requiredEnvNotSet(envAuthIssuer + " or " + envAuthDomain))
	}
	if c.Audience == "" {
		return errors.New(errAudienceRequiredFmt)
	}
	if len(c.AllowedAlgs) == 0 {
		return errors.New(errAllowedAlgsRequiredFmt)
	}
	if err := auth.ValidateAlgorithms(c.AllowedAlgs); err != nil {
		return fmt.Errorf(errAllowedAlgsInvalidFmt, err)
	}
	if !c.Discovery && c.JWKSURL == "" {
		return errors.New(messages.requiredEnvNotSet(envAuthJWKSURL + " or " + envAuthDomain))
	}
	if c.Leeway < 0 {
		return fmt.Errorf(errNegativeDurationFmt, envAuthLeeway)
	}
	if c.MinRefreshInterval < 0 {
		return fmt.Errorf(errNegativeDurationFmt, envAuthMinRefresh)
	}
	return nil
}

// ValidateExport checks the settings only the export command needs.
func (c *AWSConfig) ValidateExport() error {
	if c.Region == "" {
		return errors.New(errRegionRequiredFmt)
	}
	if c.ExportBucket == "" {
		return errors.New(errExportBucketRequiredFmt)
	}
	return nil
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL is the connection URL understood by golang-migrate's pgx/v5 driver.
func (c *DatabaseConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   migrateURLScheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{sslModeQueryKey: []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, httpsScheme)
	return strings.TrimRight(domain, trailingSlash)
}

func defaultIssuer(domain string) string {
	if domain == "" {
		return ""
	}
	return httpsScheme + domain + "/"
}

func defaultJWKSURL(domain string) string {
	if domain == "" {
		return ""
	}
	return httpsScheme + domain + jwksWellKnownPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
