package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Registration deployment variants. The same binary serves either the
// remediation or the workshop campaign; the variant selects the choice table
// and the wording sent to clients.
const (
	ModeRemediation = "remediation"
	ModeWorkshop    = "workshop"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	Auth         AuthConfig
	CORS         CORSConfig
	Log          LogConfig
	Registration RegistrationConfig
	Rosters      RosterConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the shared secret used to verify tokens issued by the
// external identity provider.
type AuthConfig struct {
	TokenSecret string
	Issuer      string
	Audience    []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RegistrationConfig selects the deployment variant and points at the
// catalog documents driving the registration engine.
type RegistrationConfig struct {
	Mode               string
	OptionsPath        string
	OptionsP910Path    string
	WindowPath         string
	UTCOffsetHours     int
	LedgerReadRetries  int
	LedgerRetryBackoff time.Duration
}

// RosterConfig tunes the staff roster view cache.
type RosterConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		TokenSecret: v.GetString("AUTH_TOKEN_SECRET"),
		Issuer:      v.GetString("AUTH_ISSUER"),
		Audience:    splitAndTrim(v.GetString("AUTH_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	mode := strings.ToLower(v.GetString("REGISTRATION_MODE"))
	if mode != ModeRemediation && mode != ModeWorkshop {
		return nil, fmt.Errorf("invalid REGISTRATION_MODE %q (want %s or %s)", mode, ModeRemediation, ModeWorkshop)
	}

	cfg.Registration = RegistrationConfig{
		Mode:               mode,
		OptionsPath:        v.GetString("CATALOG_OPTIONS_PATH"),
		OptionsP910Path:    v.GetString("CATALOG_OPTIONS_P910_PATH"),
		WindowPath:         v.GetString("CATALOG_WINDOW_PATH"),
		UTCOffsetHours:     v.GetInt("WINDOW_UTC_OFFSET_HOURS"),
		LedgerReadRetries:  v.GetInt("LEDGER_READ_RETRIES"),
		LedgerRetryBackoff: parseDuration(v.GetString("LEDGER_RETRY_BACKOFF"), 200*time.Millisecond),
	}

	cfg.Rosters = RosterConfig{
		CacheTTL: parseDuration(v.GetString("ROSTER_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

// ChoiceTable returns the registration table backing the active variant.
func (c *Config) ChoiceTable() string {
	if c.Registration.Mode == ModeWorkshop {
		return "workshop_choices"
	}
	return "remediation_choices"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "focustime")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_TOKEN_SECRET", "dev_secret")
	v.SetDefault("AUTH_ISSUER", "")
	v.SetDefault("AUTH_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REGISTRATION_MODE", ModeRemediation)
	v.SetDefault("CATALOG_OPTIONS_PATH", "./options.json")
	v.SetDefault("CATALOG_OPTIONS_P910_PATH", "./options_p910.json")
	v.SetDefault("CATALOG_WINDOW_PATH", "./registration_open.json")
	v.SetDefault("WINDOW_UTC_OFFSET_HOURS", 1)
	v.SetDefault("LEDGER_READ_RETRIES", 3)
	v.SetDefault("LEDGER_RETRY_BACKOFF", "200ms")

	v.SetDefault("ROSTER_CACHE_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
