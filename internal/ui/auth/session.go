// Пакет auth — проверка сессии пользователя dashboard.
// Сессия — JWT (HS256) в cookie "token", выпускаемый сервисом входа через Discord.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yeecord/dashboard/internal/domain/model"
)

// Имя cookie с токеном сессии.
const SessionCookieName = "token"

// Ошибки проверки сессии.
var (
	// ErrInvalidToken — подпись, срок или содержимое токена некорректны.
	ErrInvalidToken = errors.New("недействительный токен сессии")
)

// sessionClaims — claims токена сессии.
type sessionClaims struct {
	jwt.RegisteredClaims
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
}

// SessionData — пользователь из проверенного токена.
type SessionData struct {
	User      model.DiscordUser
	ExpiresAt time.Time
}

// SessionManager проверяет и выпускает токены сессии.
type SessionManager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewSessionManager создаёт менеджер сессий.
// secret — общий секрет HS256, secure — флаг Secure для cookie.
func NewSessionManager(secret string, secure bool) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("секрет сессии не задан")
	}
	return &SessionManager{secret: []byte(secret), secure: secure, now: time.Now}, nil
}

// Parse проверяет подпись и срок токена и возвращает данные сессии.
func (sm *SessionManager) Parse(token string) (*SessionData, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return sm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(sm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: пустой sub", ErrInvalidToken)
	}

	return &SessionData{
		User: model.DiscordUser{
			ID:            claims.Subject,
			Username:      claims.Username,
			Discriminator: claims.Discriminator,
			Avatar:        claims.Avatar,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue выпускает токен для пользователя со сроком ttl.
// Используется в тестах и утилитах; боевые токены выпускает сервис входа.
func (sm *SessionManager) Issue(user model.DiscordUser, ttl time.Duration) (string, error) {
	now := sm.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        user.Avatar,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// GetSessionFromRequest извлекает сессию из cookie или заголовка Authorization: Bearer.
// Возвращает nil, nil если токена нет.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*SessionData, error) {
	token := bearerToken(r)
	if token == "" {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				return nil, nil
			}
			return nil, err
		}
		token = cookie.Value
	}
	if token == "" {
		return nil, nil
	}
	return sm.Parse(token)
}

// ClearSessionCookie удаляет cookie сессии (logout).
// Cookie сессии живёт с SameSite=Lax: межсайтовый POST приходит без сессии,
// поэтому формам страниц не нужен отдельный CSRF-токен.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerToken возвращает токен из заголовка Authorization (для CLI).
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// contextKey — тип ключа контекста сессии.
type contextKey struct{}

// NewContext помещает сессию в контекст.
func NewContext(ctx context.Context, s *SessionData) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext извлекает сессию из контекста. nil — сессии нет.
func FromContext(ctx context.Context) *SessionData {
	s, _ := ctx.Value(contextKey{}).(*SessionData)
	return s
}
