package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Analytics AnalyticsConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type SecurityConfig struct {
	// AES key for check-in notes, 16, 24 or 32 bytes
	NoteEncryptionKey string
}

// AnalyticsConfig tunes the engine. Zero values mean "use the engine default",
// except EMAAlpha where nil means unset and 0 is a valid smoothing factor.
type AnalyticsConfig struct {
	Anomaly        AnomalyConfig  `yaml:"anomaly"`
	EMAAlpha       *float64       `yaml:"ema_alpha"`
	MinReliability float64        `yaml:"min_reliability"`
	Forecast       ForecastConfig `yaml:"forecast"`
	ReportCacheTTL time.Duration  `yaml:"report_cache_ttl"`
}

type AnomalyConfig struct {
	ZScoreThreshold float64 `yaml:"zscore_threshold"`
	MADThreshold    float64 `yaml:"mad_threshold"`
	IQRMultiplier   float64 `yaml:"iqr_multiplier"`
	JumpThreshold   float64 `yaml:"jump_threshold"`
	MinSamples      int     `yaml:"min_samples"`
}

type ForecastConfig struct {
	ConfidenceLevel float64        `yaml:"confidence_level"`
	Horizons        map[string]int `yaml:"horizons"`
}

const (
	defaultJWTTTL         = 24 * time.Hour
	defaultReportCacheTTL = 10 * time.Minute
	defaultMinReliability = 0.5
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", defaultJWTTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Skin Track API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "skin_track"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TTL:       jwtTTL,
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Security: SecurityConfig{
			NoteEncryptionKey: getEnv("NOTE_ENCRYPTION_KEY", ""),
		},
		Analytics: AnalyticsConfig{
			MinReliability: defaultMinReliability,
			ReportCacheTTL: defaultReportCacheTTL,
		},
	}

	if path := os.Getenv("ANALYTICS_CONFIG_PATH"); path != "" {
		if err := cfg.Analytics.loadFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	switch len(cfg.Security.NoteEncryptionKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("note encryption key must be 16, 24 or 32 bytes")
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto the current values. Keys that
// are absent from the file keep their defaults.
func (a *AnalyticsConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read analytics config: %w", err)
	}
	if err := yaml.Unmarshal(raw, a); err != nil {
		return fmt.Errorf("failed to parse analytics config: %w", err)
	}
	if a.MinReliability < 0 || a.MinReliability > 1 {
		return fmt.Errorf("min_reliability must be within [0, 1], got %v", a.MinReliability)
	}
	if a.EMAAlpha != nil && (*a.EMAAlpha < 0 || *a.EMAAlpha > 1) {
		return fmt.Errorf("ema_alpha must be within [0, 1], got %v", *a.EMAAlpha)
	}
	if a.ReportCacheTTL <= 0 {
		a.ReportCacheTTL = defaultReportCacheTTL
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
