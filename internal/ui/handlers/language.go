// language.go — обработчик переключения языка страниц.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeecord/dashboard/internal/ui/i18n"
)

// HandleSetLanguage обрабатывает POST /language.
// Устанавливает cookie "lang" и перенаправляет обратно.
// Параметр lang: "en" или "zh-TW" (из формы или query).
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if lang == "" {
		lang = r.URL.Query().Get("lang")
	}
	lang = i18n.Normalize(lang)

	// Cookie "lang" на 1 год
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	http.Redirect(w, r, backPath(r.Header.Get("Referer")), http.StatusSeeOther)
}

// backPath возвращает путь из Referer (без схемы и хоста) или "/".
// Модальные параметры запроса отбрасываются, чтобы окно не появлялось повторно.
func backPath(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return u.Path
}
