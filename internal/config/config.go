package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Log      LogConfig
	CORS     CORSConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port            string
	Env             string
	Host            string
	BodyLimitBytes  int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects the primary store and the optional local snapshot fallback.
type StoreConfig struct {
	Driver         string
	FallbackFile   string
	ConnectTimeout time.Duration
}

type MongoConfig struct {
	URI                    string
	Database               string
	Collection             string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	MaxConnections int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsDir  string
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	RiderTTL    time.Duration
}

type NewRelicConfig struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type FeatureFlags struct {
	EnableRequestLogging bool
	EnableSeed           bool
}

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"

	EnvProduction = "production"
)

var developmentOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// Load loads configuration from the environment, reading a .env file first when present
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Env:             v.GetString("SERVER_ENV"),
			Host:            v.GetString("SERVER_HOST"),
			BodyLimitBytes:  v.GetInt64("SERVER_BODY_LIMIT_BYTES"),
			RequestTimeout:  v.GetDuration("SERVER_REQUEST_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(v.GetString("STORE_DRIVER")),
			FallbackFile:   v.GetString("STORE_FALLBACK_FILE"),
			ConnectTimeout: v.GetDuration("STORE_CONNECT_TIMEOUT"),
		},
		Mongo: MongoConfig{
			URI:                    v.GetString("MONGODB_URI"),
			Database:               v.GetString("MONGODB_DATABASE"),
			Collection:             v.GetString("MONGODB_COLLECTION"),
			MaxPoolSize:            v.GetUint64("MONGODB_OPTIONS_MAX_POOL_SIZE"),
			ServerSelectionTimeout: time.Duration(v.GetInt("MONGODB_OPTIONS_SERVER_SELECTION_TIMEOUT_MS")) * time.Millisecond,
			SocketTimeout:          time.Duration(v.GetInt("MONGODB_OPTIONS_SOCKET_TIMEOUT_MS")) * time.Millisecond,
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MaxConnections: v.GetInt("DB_MAX_CONNECTIONS"),
			MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNECTIONS"),
			MaxLifetime:    time.Duration(v.GetInt("DB_MAX_LIFETIME_MINUTES")) * time.Minute,
			MigrationsDir:  v.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Enabled:     v.GetBool("REDIS_ENABLED"),
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			MaxRetries:  v.GetInt("REDIS_MAX_RETRIES"),
			PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConn: 2,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
			RiderTTL:    time.Duration(v.GetInt("CACHE_TTL_RIDER")) * time.Second,
		},
		NewRelic: NewRelicConfig{
			LicenseKey: v.GetString("NEW_RELIC_LICENSE_KEY"),
			AppName:    v.GetString("NEW_RELIC_APP_NAME"),
			Enabled:    v.GetBool("NEW_RELIC_ENABLED"),
			LogLevel:   v.GetString("NEW_RELIC_LOG_LEVEL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		},
		Features: FeatureFlags{
			EnableRequestLogging: v.GetBool("ENABLE_REQUEST_LOGGING"),
			EnableSeed:           v.GetBool("ENABLE_SEED"),
		},
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		if cfg.IsProduction() {
			cfg.CORS.AllowedOrigins = []string{"*"}
		} else {
			cfg.CORS.AllowedOrigins = developmentOrigins
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_BODY_LIMIT_BYTES", 50<<20)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("STORE_DRIVER", StoreDriverMongo)
	v.SetDefault("STORE_FALLBACK_FILE", "")
	v.SetDefault("STORE_CONNECT_TIMEOUT", "10s")

	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "riderdb")
	v.SetDefault("MONGODB_COLLECTION", "riders")
	v.SetDefault("MONGODB_OPTIONS_MAX_POOL_SIZE", 10)
	v.SetDefault("MONGODB_OPTIONS_SERVER_SELECTION_TIMEOUT_MS", 5000)
	v.SetDefault("MONGODB_OPTIONS_SOCKET_TIMEOUT_MS", 45000)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "riderdb")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNECTIONS", 5)
	v.SetDefault("DB_MAX_LIFETIME_MINUTES", 30)
	v.SetDefault("DB_MIGRATIONS_DIR", "./internal/repository/postgres/migrations")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("CACHE_TTL_RIDER", 300)

	v.SetDefault("NEW_RELIC_LICENSE_KEY", "")
	v.SetDefault("NEW_RELIC_APP_NAME", "Rider-Roster")
	v.SetDefault("NEW_RELIC_ENABLED", false)
	v.SetDefault("NEW_RELIC_LOG_LEVEL", "info")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("ENABLE_REQUEST_LOGGING", true)
	v.SetDefault("ENABLE_SEED", true)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Server.BodyLimitBytes <= 0 {
		return fmt.Errorf("SERVER_BODY_LIMIT_BYTES must be positive")
	}
	switch c.Store.Driver {
	case StoreDriverMongo:
		// A missing MONGODB_URI surfaces as a connect failure during store
		// selection, which is fatal only in production.
	case StoreDriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED is set")
	}
	return nil
}

// IsProduction reports whether the process runs in a production-designated environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// HasFallback reports whether a local snapshot can replace an unreachable primary store
func (c *Config) HasFallback() bool {
	return c.Store.FallbackFile != ""
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
