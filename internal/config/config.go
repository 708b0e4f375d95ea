package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Geo       GeoConfig
	Scan      ScanConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port            string
	BaseURL         string        // Публичный адрес, из которого строятся короткие ссылки и QR
	LinkCacheTTL    time.Duration // Время жизни ссылки в Redis
	ShutdownTimeout time.Duration // Бюджет на остановку сервера и дренаж очереди сканов
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Migrate  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type AuthConfig struct {
	APIKeys map[string]string // API key -> name/description
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// GeoConfig настройки геолокации по IP
type GeoConfig struct {
	Provider  string        // ipapi | geoip | none
	APIURL    string        // Базовый адрес ip-api
	Timeout   time.Duration // Жёсткий лимит на lookup в пути запроса
	CacheTTL  time.Duration // 0 отключает кэш
	GeoIPPath string        // Путь к MaxMind City базе для провайдера geoip
}

// ScanConfig настройки пула записи сканов
type ScanConfig struct {
	Workers    int
	Buffer     int
	MaxRetries int
}

type TracingConfig struct {
	Endpoint string // OTLP/gRPC коллектор, пусто - экспорт выключен
}

const (
	GeoProviderIPAPI = "ipapi"
	GeoProviderGeoIP = "geoip"
	GeoProviderNone  = "none"
)

// Load читает .env (если он есть) и переменные окружения
func Load() (*Config, error) {
	return load(".env")
}

func load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.BaseURL = strings.TrimRight(v.GetString("BASE_URL"), "/")
	cfg.App.LinkCacheTTL = v.GetDuration("LINK_CACHE_TTL")
	cfg.App.ShutdownTimeout = v.GetDuration("SHUTDOWN_TIMEOUT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.Migrate = v.GetBool("DB_MIGRATE")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")

	// Format: key1:name1,key2:name2
	cfg.Auth.APIKeys = parseAPIKeys(v.GetString("API_KEYS"))

	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize <= 0 {
		cfg.RateLimit.BurstSize = 20
	}

	cfg.Geo.Provider = strings.ToLower(strings.TrimSpace(v.GetString("GEO_PROVIDER")))
	cfg.Geo.APIURL = strings.TrimRight(v.GetString("GEO_API_URL"), "/")
	cfg.Geo.Timeout = v.GetDuration("GEO_TIMEOUT")
	cfg.Geo.CacheTTL = v.GetDuration("GEO_CACHE_TTL")
	cfg.Geo.GeoIPPath = v.GetString("GEOIP_DB_PATH")

	cfg.Scan.Workers = v.GetInt("SCAN_WORKERS")
	cfg.Scan.Buffer = v.GetInt("SCAN_BUFFER")
	cfg.Scan.MaxRetries = v.GetInt("SCAN_MAX_RETRIES")

	cfg.Tracing.Endpoint = v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LINK_CACHE_TTL", "24h")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("GEO_PROVIDER", GeoProviderIPAPI)
	v.SetDefault("GEO_API_URL", "http://ip-api.com")
	v.SetDefault("GEO_TIMEOUT", "800ms")
	v.SetDefault("GEO_CACHE_TTL", "24h")
	v.SetDefault("SCAN_WORKERS", 3)
	v.SetDefault("SCAN_BUFFER", 1000)
	v.SetDefault("SCAN_MAX_RETRIES", 3)
}

func (c *Config) validate() error {
	switch c.Geo.Provider {
	case GeoProviderIPAPI, GeoProviderNone:
	case GeoProviderGeoIP:
		if c.Geo.GeoIPPath == "" {
			return errors.New("GEOIP_DB_PATH is required for geoip provider")
		}
	default:
		return errors.New("unknown GEO_PROVIDER: " + c.Geo.Provider)
	}
	if c.Geo.Timeout <= 0 {
		return errors.New("GEO_TIMEOUT must be positive")
	}
	if c.Scan.Workers <= 0 || c.Scan.Buffer <= 0 {
		return errors.New("SCAN_WORKERS and SCAN_BUFFER must be positive")
	}
	if c.Scan.MaxRetries <= 0 {
		c.Scan.MaxRetries = 1
	}
	return nil
}

// parseAPIKeys parses comma-separated API keys in format "key1:name1,key2:name2"
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	if raw == "" {
		return keys
	}

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
			keys[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}

	return keys
}
