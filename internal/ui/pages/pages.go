// Пакет pages — HTML-страницы dashboard.
// Разметка описана в *.templ, файлы *_templ.go создаёт templ generate.
package pages

//go:generate templ generate

import (
	"strconv"
	"time"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/domain/selection"
)

// Modal — модальное окно поверх страницы.
type Modal struct {
	Title   string
	Content string
}

// IndexData — данные страницы профиля.
type IndexData struct {
	User              model.DiscordUser
	RewardTier        int
	Drive             model.DriveSettings
	GoogleDriveLinked bool
	// Loading — запрос обновления настроек ещё в полёте
	Loading bool
	Modal   *Modal
}

// RecordingRow — строка списка записей.
type RecordingRow struct {
	Recording model.Recording
	Expired   bool
	Selected  bool
	// DownloadURL — ссылка скачивания с учётом публичного адреса
	DownloadURL string
}

// RecordingsData — данные страницы записей.
type RecordingsData struct {
	User            model.DiscordUser
	Rows            []RecordingRow
	SelectableCount int
	SelectedCount   int
	AllSelected     bool
	// Stagger — шаг задержки между открытием загрузок в браузере
	Stagger time.Duration
	// Plan — загрузки после POST action=download (страница без JavaScript)
	Plan []selection.Download
}

// otherLanguage — язык, на который переключает кнопка внизу страницы.
func otherLanguage(lang string) string {
	if lang == "en" {
		return "zh-TW"
	}
	return "en"
}

// staggerMillis — шаг задержки для data-stagger-ms.
func staggerMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

// expiresAttr — момент истечения для data-expires-at (RFC 3339, UTC).
func expiresAttr(rec model.Recording) string {
	return rec.ExpiresAt.UTC().Format(time.RFC3339)
}
