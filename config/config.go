package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Settings is the process configuration, read from the environment (and .env when present).
type Settings struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBDriver   string `mapstructure:"DB_DRIVER"` // postgres | mysql
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	ClickDedupeWindow time.Duration `mapstructure:"CLICK_DEDUPE_WINDOW"`
	DashboardCacheTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`
	LoginPerMinute    int           `mapstructure:"LOGIN_PER_MINUTE"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaClickTopic string `mapstructure:"KAFKA_CLICK_TOPIC"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
}

var defaults = map[string]any{
	"APP_ENV":             "dev",
	"PORT":                "8080",
	"LOG_LEVEL":           "info",
	"DB_DRIVER":           "postgres",
	"DB_HOST":             "127.0.0.1",
	"DB_PORT":             5432,
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "",
	"DB_NAME":             "couponhub",
	"DB_SSLMODE":          "disable",
	"JWT_SECRET":          "",
	"JWT_TTL":             "24h",
	"ADMIN_EMAIL":         "",
	"ADMIN_PASSWORD":      "",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"CLICK_DEDUPE_WINDOW": "30s",
	"DASHBOARD_CACHE_TTL": "1m",
	"LOGIN_PER_MINUTE":    10,
	"KAFKA_BROKERS":       "",
	"KAFKA_CLICK_TOPIC":   "coupon-clicks",
	"MINIO_ENDPOINT":      "",
	"MINIO_ACCESS_KEY":    "",
	"MINIO_SECRET_KEY":    "",
	"MINIO_BUCKET":        "click-archive",
	"MINIO_USE_SSL":       false,
}

// Load reads .env (if any) into the process environment and unmarshals it into Settings.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using process environment")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch s.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", s.DBDriver)
	}
	if s.DBHost == "" || s.DBName == "" {
		return fmt.Errorf("DB_HOST and DB_NAME are required")
	}
	if s.JWTSecret == "" {
		if s.Env != "dev" {
			return fmt.Errorf("JWT_SECRET is required outside dev")
		}
		s.JWTSecret = "dev-secret-change-me"
	}
	if s.JWTTTL <= 0 {
		s.JWTTTL = 24 * time.Hour
	}
	if s.LoginPerMinute <= 0 {
		s.LoginPerMinute = 10
	}
	return nil
}

// DSN builds the gorm data source name for the configured driver.
func (s *Settings) DSN() string {
	if s.DBDriver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&TimeZone=UTC",
		s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName, s.DBSSLMode)
}

// DSNMasked is DSN with the password hidden, for logs.
func (s *Settings) DSNMasked() string {
	masked := *s
	if masked.DBPassword != "" {
		masked.DBPassword = "******"
	}
	return masked.DSN()
}

func (s *Settings) KafkaBrokerList() []string {
	if strings.TrimSpace(s.KafkaBrokers) == "" {
		return nil
	}
	var out []string
	for _, b := range strings.Split(s.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
