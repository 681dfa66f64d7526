package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Report   ReportConfig
	Log      LogConfig
	Auth     AuthConfig
	Kafka    KafkaConfig
}

type AppConfig struct {
	AppName     string   `env:"APP_NAME"`
	Environment string   `env:"APP_ENV"`
	HTTPPort    string   `env:"HTTP_PORT"`
	WSPort      string   `env:"WS_PORT" envDefault:"8081"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost,http://localhost:8080"`
}

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS" envDefault:"10"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS" envDefault:"0"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME" envDefault:"1h"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type ReportConfig struct {
	Dir              string        `env:"REPORT_DIR" envDefault:"report_data"`
	DefaultTimezone  string        `env:"REPORT_DEFAULT_TIMEZONE" envDefault:"America/Chicago"`
	Workers          int           `env:"REPORT_WORKERS" envDefault:"0"`
	JobTimeout       time.Duration `env:"REPORT_JOB_TIMEOUT" envDefault:"30m"`
	AssumedDuration  time.Duration `env:"REPORT_ASSUMED_DURATION" envDefault:"2m"`
	StatusTTL        time.Duration `env:"REPORT_STATUS_TTL" envDefault:"24h"`
	DataTTL          time.Duration `env:"REPORT_DATA_TTL" envDefault:"168h"`
	DownloadBasePath string        `env:"REPORT_DOWNLOAD_BASE_PATH" envDefault:"/api/v1/reports"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
}

type AuthConfig struct {
	APITokenSecret string        `env:"API_TOKEN_SECRET"`
	APITokenTTL    time.Duration `env:"API_TOKEN_TTL" envDefault:"720h"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"store-monitor.report-status"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

var requiredKeys = []string{"APP_NAME", "APP_ENV", "HTTP_PORT", "DB_NAME", "DB_USER"}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.App.HTTPPort = strings.TrimSpace(cfg.App.HTTPPort)
	cfg.Report.DefaultTimezone = strings.TrimSpace(cfg.Report.DefaultTimezone)
	if cfg.Report.DefaultTimezone == "" {
		cfg.Report.DefaultTimezone = "America/Chicago"
	}
	if _, err := time.LoadLocation(cfg.Report.DefaultTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid REPORT_DEFAULT_TIMEZONE %q: %w", cfg.Report.DefaultTimezone, err)
	}
	return cfg, nil
}

func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && strings.TrimSpace(c.Kafka.Brokers[0]) != ""
}
