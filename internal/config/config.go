package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "PathoLens"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultStoragePath    = "./storage"
	defaultPublicBaseURL  = "http://localhost:8080/files"
	defaultClassifierCmd  = "python3"
	defaultClassifierArg  = "scripts/classify.py"
	defaultClassifierWait = 180 * time.Second
	defaultNewsEndpoint   = "https://newsdata.io/api/1/news"
	defaultNewsQuery      = "pemphigus"
	defaultNewsLanguage   = "en"
	defaultNewsCacheTTL   = 30 * time.Minute
	defaultMaxImageBytes  = 10 << 20
	defaultBcryptCost     = 10
	defaultLoginPerMin    = 5
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	DBMaxConns     int // 0 keeps the driver default
	RedisURL       string
	ShutdownPeriod time.Duration

	// Credential hashing and login throttling.
	BcryptCost     int
	LoginPerMinute int

	// Uploaded file storage (profile and diagnosis images).
	StoragePath   string
	PublicBaseURL string
	MaxImageBytes int64

	// Classification bridge.
	ClassifierCommand string
	ClassifierScript  string
	ClassifierTimeout time.Duration
	ScratchDir        string

	// News passthrough.
	NewsEndpoint string
	NewsAPIKey   string
	NewsQuery    string
	NewsLanguage string
	NewsCacheTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ShutdownPeriod:    defaultShutdownDelay,
		BcryptCost:        defaultBcryptCost,
		LoginPerMinute:    defaultLoginPerMin,
		StoragePath:       getEnv("STORAGE_PATH", defaultStoragePath),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL), "/"),
		MaxImageBytes:     defaultMaxImageBytes,
		ClassifierCommand: getEnv("CLASSIFIER_COMMAND", defaultClassifierCmd),
		ClassifierScript:  getEnv("CLASSIFIER_SCRIPT", defaultClassifierArg),
		ClassifierTimeout: defaultClassifierWait,
		ScratchDir:        os.Getenv("SCRATCH_DIR"),
		NewsEndpoint:      getEnv("NEWS_ENDPOINT", defaultNewsEndpoint),
		NewsAPIKey:        os.Getenv("NEWS_API_KEY"),
		NewsQuery:         getEnv("NEWS_QUERY", defaultNewsQuery),
		NewsLanguage:      getEnv("NEWS_LANGUAGE", defaultNewsLanguage),
		NewsCacheTTL:      defaultNewsCacheTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.ClassifierTimeout, err = getDuration("CLASSIFIER_TIMEOUT", cfg.ClassifierTimeout); err != nil {
		return Config{}, err
	}
	if cfg.NewsCacheTTL, err = getDuration("NEWS_CACHE_TTL", cfg.NewsCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return Config{}, err
	}
	if cfg.LoginPerMinute, err = getInt("LOGIN_PER_MINUTE", cfg.LoginPerMinute); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxConns, err = getInt("DB_MAX_CONNS", cfg.DBMaxConns); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("MAX_IMAGE_BYTES"); v != "" {
		n, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid MAX_IMAGE_BYTES: %w", parseErr)
		}
		cfg.MaxImageBytes = n
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in a development-like environment.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts either a bare number of seconds or a Go duration string.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
