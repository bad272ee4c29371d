// Пакет config — загрузка и валидация конфигурации dashboard
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации dashboard.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Публичный URL сайта; префикс ссылок скачивания (пусто — относительные ссылки)
	PublicURL string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Сессия ---

	// Секрет HS256 для проверки токена сессии (cookie "token")
	JWTSecret string
	// URL страницы входа через Discord
	LoginURL string

	// --- Страницы ---

	// Сколько последних записей показывать
	RecordingsLimit int
	// Шаг задержки между открытием загрузок
	DownloadStagger time.Duration
	// Лимит запросов PUT /api/user/drive на пользователя в минуту
	DriveRateLimit int
	// Время жизни кэша статуса привязки Google Drive
	CacheTTL time.Duration

	// --- topologymetrics ---

	// Группа сервиса для метрик зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Таймаут начала прослушивания порта
	ListenTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// YD_PORT — порт HTTP-сервера (по умолчанию 3000)
	cfg.Port, err = getEnvInt("YD_PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("YD_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("YD_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// YD_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("YD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("YD_LOG_LEVEL: %w", err)
	}

	// YD_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("YD_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("YD_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// YD_PUBLIC_URL — опциональный, без завершающего слэша
	cfg.PublicURL = strings.TrimRight(getEnvDefault("YD_PUBLIC_URL", ""), "/")
	if cfg.PublicURL != "" {
		if u, perr := url.Parse(cfg.PublicURL); perr != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("YD_PUBLIC_URL: некорректный URL %q", cfg.PublicURL)
		}
	}

	// --- PostgreSQL ---

	// YD_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("YD_DB_HOST")
	if err != nil {
		return nil, err
	}

	// YD_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("YD_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("YD_DB_PORT: %w", err)
	}

	// YD_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("YD_DB_NAME")
	if err != nil {
		return nil, err
	}

	// YD_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("YD_DB_USER")
	if err != nil {
		return nil, err
	}

	// YD_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("YD_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// YD_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("YD_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("YD_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Сессия ---

	// YD_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("YD_JWT_SECRET")
	if err != nil {
		return nil, err
	}

	// YD_LOGIN_URL — страница входа (по умолчанию /login)
	cfg.LoginURL = getEnvDefault("YD_LOGIN_URL", "/login")

	// --- Страницы ---

	// YD_RECORDINGS_LIMIT — число записей на странице (по умолчанию 100)
	cfg.RecordingsLimit, err = getEnvInt("YD_RECORDINGS_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("YD_RECORDINGS_LIMIT: %w", err)
	}
	if cfg.RecordingsLimit < 1 || cfg.RecordingsLimit > 1000 {
		return nil, fmt.Errorf("YD_RECORDINGS_LIMIT: значение %d вне допустимого диапазона 1-1000", cfg.RecordingsLimit)
	}

	// YD_DOWNLOAD_STAGGER — шаг задержки загрузок (по умолчанию 500ms)
	cfg.DownloadStagger, err = getEnvDuration("YD_DOWNLOAD_STAGGER", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("YD_DOWNLOAD_STAGGER: %w", err)
	}

	// YD_DRIVE_RATE_LIMIT — запросов в минуту (по умолчанию 30)
	cfg.DriveRateLimit, err = getEnvInt("YD_DRIVE_RATE_LIMIT", 30)
	if err != nil {
		return nil, fmt.Errorf("YD_DRIVE_RATE_LIMIT: %w", err)
	}
	if cfg.DriveRateLimit < 1 {
		return nil, fmt.Errorf("YD_DRIVE_RATE_LIMIT: значение %d должно быть положительным", cfg.DriveRateLimit)
	}

	// YD_CACHE_TTL — TTL кэша привязки Google Drive (по умолчанию 30s)
	cfg.CacheTTL, err = getEnvDuration("YD_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("YD_CACHE_TTL: %w", err)
	}

	// --- topologymetrics ---

	// YD_DEPHEALTH_GROUP — группа сервиса (по умолчанию yeecord)
	cfg.DephealthGroup = getEnvDefault("YD_DEPHEALTH_GROUP", "yeecord")

	// YD_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("YD_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("YD_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// YD_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 3s)
	cfg.ShutdownTimeout, err = getEnvDuration("YD_SHUTDOWN_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("YD_SHUTDOWN_TIMEOUT: %w", err)
	}

	// YD_LISTEN_TIMEOUT — таймаут запуска прослушивания (по умолчанию 10s)
	cfg.ListenTimeout, err = getEnvDuration("YD_LISTEN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("YD_LISTEN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения для golang-migrate.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
