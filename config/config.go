package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and passed to whoever needs it.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Reporting ReportingConfig `mapstructure:"reporting"`
	Imports   ImportsConfig   `mapstructure:"imports"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI             string        `mapstructure:"uri"`
	Database        string        `mapstructure:"database"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ReportTTL time.Duration `mapstructure:"report_ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type ReportingConfig struct {
	TopRisksDefault   int `mapstructure:"top_risks_default"`
	TopRisksMax       int `mapstructure:"top_risks_max"`
	TrendLimit        int `mapstructure:"trend_limit"`
	LatestValuesLimit int `mapstructure:"latest_values_limit"`
}

type ImportsConfig struct {
	MaxFileSize   int64 `mapstructure:"max_file_size"`
	RatePerMinute int   `mapstructure:"rate_per_minute"`
	Burst         int   `mapstructure:"burst"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads .env (if any) into the environment, then layers config.yaml and
// environment variables over the defaults. MONGO_URI overrides mongo.uri.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongo.database", "kpix")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.connect_attempts", 5)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.report_ttl", 60*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("reporting.top_risks_default", 5)
	v.SetDefault("reporting.top_risks_max", 50)
	v.SetDefault("reporting.trend_limit", 3)
	v.SetDefault("reporting.latest_values_limit", 20)

	v.SetDefault("imports.max_file_size", 10<<20)
	v.SetDefault("imports.rate_per_minute", 6)
	v.SetDefault("imports.burst", 2)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is required")
	}
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri (MONGO_URI) is required")
	}
	if c.Reporting.TopRisksDefault < 1 || c.Reporting.TopRisksDefault > c.Reporting.TopRisksMax {
		return fmt.Errorf("reporting.top_risks_default must be between 1 and %d", c.Reporting.TopRisksMax)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
