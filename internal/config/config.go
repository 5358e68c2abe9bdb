package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	BaseURL     string        `env:"BASE_URL"`
	EnableHTTPS bool          `env:"ENABLE_HTTPS"`
	ServerURL   string        `env:"-"`
	SessionTTL  time.Duration `env:"SESSION_TTL"`

	// Загруженные файлы
	MediaRoot      string `env:"MEDIA_ROOT"`
	MediaURL       string `env:"MEDIA_URL"`
	StorageType    string `env:"STORAGE_TYPE"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	DefaultLang string `env:"DEFAULT_LANG"`
	Debug       bool   `env:"DEBUG"`
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД или путь к файлу SQLite")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "адрес сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "cookie только по HTTPS")
	flag.StringVar(&cfg.MediaRoot, "media-root", cfg.MediaRoot, "каталог для загруженных файлов")
	flag.StringVar(&cfg.StorageType, "storage", cfg.StorageType, "хранилище файлов: local или minio")
	flag.StringVar(&cfg.DefaultLang, "lang", cfg.DefaultLang, "язык интерфейса по умолчанию")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "режим разработки (подробные логи)")

	flag.Parse()

	// Defaults
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "campus.db"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// BaseURL должен быть вида "address:port" (без схемы и пути)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 14 * 24 * time.Hour
	}

	if cfg.MediaRoot == "" {
		cfg.MediaRoot = "media"
	}
	if cfg.MediaURL == "" {
		cfg.MediaURL = "/media/"
	}
	if !strings.HasPrefix(cfg.MediaURL, "/") {
		cfg.MediaURL = "/" + cfg.MediaURL
	}
	if !strings.HasSuffix(cfg.MediaURL, "/") {
		cfg.MediaURL += "/"
	}
	cfg.StorageType = strings.ToLower(cfg.StorageType)
	if cfg.StorageType == "" {
		cfg.StorageType = "local"
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "campus-media"
	}

	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "uk"
	}

	return cfg
}
