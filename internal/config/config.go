package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	App struct {
		Env  string
		Port string
	} `mapstructure:"app"`

	Postgres struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string `mapstructure:"dbname"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"postgres"`

	Redis struct {
		Addr     string
		Password string
		DB       int
	} `mapstructure:"redis"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		// Seed admin created at startup when no users exist yet.
		BootstrapAdminUsername string `mapstructure:"bootstrap_admin_username"`
		BootstrapAdminPassword string `mapstructure:"bootstrap_admin_password"`
	} `mapstructure:"auth"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	RateLimit struct {
		Enabled       bool
		LoginAttempts int `mapstructure:"login_attempts"`
		WindowSeconds int `mapstructure:"window_seconds"`
	} `mapstructure:"ratelimit"`

	Migrations struct {
		Dir string
	} `mapstructure:"migrations"`
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User,
		c.Postgres.Password, c.Postgres.DBName, c.Postgres.SSLMode)
}

// Load reads the YAML config at path and applies GYM_* environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("GYM")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", "8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.bootstrap_admin_username", "admin")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.login_attempts", 10)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("migrations.dir", "migrations")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unmarshalling config: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		return c, fmt.Errorf("auth.jwt_secret must be set")
	}
	return c, nil
}
