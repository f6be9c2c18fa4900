package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 从环境变量读取
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Borrow BorrowConfig
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"3000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	WebOrigin string `envconfig:"WEB_ORIGIN" default:"*"`
}

func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

type DBConfig struct {
	URL    string `envconfig:"DATABASE_URL"`
	Driver string `envconfig:"DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`
	Name     string `envconfig:"DB_NAME" default:"workshop_tools"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`

	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"false"`
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL assembled from
// the individual DB_* fields. For sqlite the URL (or DB_NAME) is a file path.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return d.Name + ".db"
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Enabled 未配置 REDIS_ADDR 时不启用分布式锁
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type BorrowConfig struct {
	LockTTL      time.Duration `envconfig:"BORROW_LOCK_TTL" default:"5s"`
	OverdueAfter time.Duration `envconfig:"OVERDUE_AFTER" default:"48h"`
}

// LoadEnv loads a .env file when present. A missing file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Borrow.OverdueAfter <= 0 {
		return fmt.Errorf("OVERDUE_AFTER must be positive")
	}
	return nil
}
