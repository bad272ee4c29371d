// ratelimit.go — ограничение частоты запросов через httprate.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	apierrors "github.com/yeecord/dashboard/internal/api/errors"
)

// RateLimitConfig — параметры ограничения частоты.
type RateLimitConfig struct {
	// RequestLimit — максимум запросов в окне
	RequestLimit int
	// WindowSize — длина скользящего окна
	WindowSize time.Duration
	// KeyFunc — ключ ограничения; nil — по IP
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit создаёт middleware со скользящим окном httprate.
// Превышение — 429 в формате ошибок API с заголовком Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.WindowSize.Seconds())))
			apierrors.RateLimited(w, "Too many requests. Please try again later.")
		}),
	)
}

// KeyBySessionUser — ключ ограничения по ID пользователя сессии.
// Применяется после SessionAuth.
func KeyBySessionUser(r *http.Request) (string, error) {
	session := SessionFromContext(r.Context())
	if session == nil {
		return "", errors.New("сессия не найдена в контексте")
	}
	return "user:" + session.User.ID, nil
}
