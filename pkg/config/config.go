package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Attendance AttendanceConfig
	QR         QRConfig
	NFC        NFCConfig
	Evidence   EvidenceConfig
	Geocoding  GeocodingConfig
	RateLimit  RateLimitConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig governs intake behaviour defaults.
type AttendanceConfig struct {
	// RequireLocationDefault seeds the require_location setting when the
	// settings table has no row for it yet.
	RequireLocationDefault bool
	SettingsCacheTTL       time.Duration
}

// QRConfig controls QR capability token issuance.
type QRConfig struct {
	TokenTTL  time.Duration
	SubmitURL string
}

// NFCConfig controls card registration and attendance sessions.
type NFCConfig struct {
	SessionTTL    time.Duration
	ShortIDLength int
	TagBaseURL    string
}

// EvidenceConfig controls the photo evidence store and its janitor.
type EvidenceConfig struct {
	StorageDir      string
	PublicBaseURL   string
	RetentionTTL    time.Duration
	JanitorInterval time.Duration
}

// GeocodingConfig configures the reverse-geocoding collaborator.
type GeocodingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig throttles the intake endpoints per client IP.
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
	Burst     int
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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		RequireLocationDefault: v.GetBool("REQUIRE_LOCATION_DEFAULT"),
		SettingsCacheTTL:       parseDuration(v.GetString("SETTINGS_CACHE_TTL"), 30*time.Second),
	}

	cfg.QR = QRConfig{
		TokenTTL:  parseDuration(v.GetString("QR_TOKEN_TTL"), 15*time.Minute),
		SubmitURL: v.GetString("QR_SUBMIT_URL"),
	}

	cfg.NFC = NFCConfig{
		SessionTTL:    parseDuration(v.GetString("NFC_SESSION_TTL"), 30*time.Minute),
		ShortIDLength: v.GetInt("NFC_SHORT_ID_LENGTH"),
		TagBaseURL:    v.GetString("NFC_TAG_BASE_URL"),
	}

	cfg.Evidence = EvidenceConfig{
		StorageDir:      v.GetString("EVIDENCE_STORAGE_DIR"),
		PublicBaseURL:   v.GetString("EVIDENCE_PUBLIC_BASE_URL"),
		RetentionTTL:    parseDuration(v.GetString("EVIDENCE_RETENTION_TTL"), 24*time.Hour),
		JanitorInterval: parseDuration(v.GetString("EVIDENCE_JANITOR_INTERVAL"), time.Hour),
	}

	cfg.Geocoding = GeocodingConfig{
		BaseURL: v.GetString("GEOCODING_BASE_URL"),
		Timeout: parseDuration(v.GetString("GEOCODING_TIMEOUT"), 5*time.Second),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:   v.GetBool("RATE_LIMIT_ENABLED"),
		PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Burst:     v.GetInt("RATE_LIMIT_BURST"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "presensi")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "presensi-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REQUIRE_LOCATION_DEFAULT", true)
	v.SetDefault("SETTINGS_CACHE_TTL", "30s")

	v.SetDefault("QR_TOKEN_TTL", "15m")
	v.SetDefault("QR_SUBMIT_URL", "http://localhost:8080/api/v1/attendance/qr")

	v.SetDefault("NFC_SESSION_TTL", "30m")
	v.SetDefault("NFC_SHORT_ID_LENGTH", 8)
	v.SetDefault("NFC_TAG_BASE_URL", "http://localhost:8080/api/v1/attendance/nfc/tap")

	v.SetDefault("EVIDENCE_STORAGE_DIR", "./evidence")
	v.SetDefault("EVIDENCE_PUBLIC_BASE_URL", "http://localhost:8080/evidence")
	v.SetDefault("EVIDENCE_RETENTION_TTL", "24h")
	v.SetDefault("EVIDENCE_JANITOR_INTERVAL", "1h")

	v.SetDefault("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODING_TIMEOUT", "5s")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT_BURST", 10)
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
