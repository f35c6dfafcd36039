package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest accepted session signing secret.
const MinSecretLength = 32

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8084"`
	Timeout         time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	DSN    string `yaml:"dsn" env:"DB_DSN" env-default:"host=localhost port=5432 user=postgres dbname=daily_reports sslmode=disable"`
}

type SessionConfig struct {
	Secret     string `yaml:"secret" env:"SESSION_SECRET"`
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"session"`
}

type JobsConfig struct {
	// MissingReports is a cron spec; "off" disables the job.
	MissingReports string `yaml:"missing_reports" env:"JOBS_MISSING_REPORTS" env-default:"0 9 * * *"`
}

type Config struct {
	Env      string        `yaml:"env" env:"PORTAL_ENV" env-default:"production"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	HTTP     HTTPConfig    `yaml:"http_server"`
	DB       DBConfig      `yaml:"db"`
	Session  SessionConfig `yaml:"session"`
	Timezone string        `yaml:"timezone" env:"PORTAL_TIMEZONE" env-default:"UTC"`
	Jobs     JobsConfig    `yaml:"jobs"`
	SeedFile string        `yaml:"seed_file" env:"SEED_FILE"`
}

// Development reports whether cookies may travel over plain HTTP.
func (c Config) Development() bool {
	return c.Env == "development"
}

// Location is the time zone report days are counted in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MissingReportsEnabled reports whether the missing-report job should run.
func (c Config) MissingReportsEnabled() bool {
	spec := strings.TrimSpace(c.Jobs.MissingReports)
	return spec != "" && spec != "off"
}

// Load reads an optional .env file, then the YAML file at configPath,
// then the environment. A missing config file is not an error; the
// environment alone is used.
func Load(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config
	if err := read(configPath, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

func read(configPath string, cfg *Config) error {
	if configPath == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
		return nil
	}

	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(cfg); err != nil {
				return fmt.Errorf("read env: %w", err)
			}
			return nil
		}
		return fmt.Errorf("read config %q: %w", configPath, err)
	}
	return nil
}

func (c Config) validate() error {
	if len(c.Session.Secret) < MinSecretLength {
		return fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name must not be empty")
	}

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db dsn must not be empty")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
