// Пакет model — доменные модели дашборда Yeecord.
package model

import (
	"fmt"
	"net/url"
	"time"
)

// Recording — запись голосового канала Discord.
// Хранится в таблице recordings, для клиента неизменяема.
type Recording struct {
	// ID — идентификатор записи
	ID string `json:"id"`
	// AccessKey — ключ доступа к скачиванию (capability token)
	AccessKey string `json:"accessKey"`
	// CreatedAt — время начала записи
	CreatedAt time.Time `json:"createdAt"`
	// EndedAt — время окончания записи (nil, пока запись идёт)
	EndedAt *time.Time `json:"endedAt"`
	// ExpiresAt — время, после которого запись недоступна для скачивания
	ExpiresAt time.Time `json:"expiresAt"`
	// ChannelID — голосовой канал Discord
	ChannelID string `json:"channelId"`
	// GuildID — сервер Discord
	GuildID string `json:"guildId"`
	// Autorecorded — запись запущена автоматически (а не командой /join)
	Autorecorded bool `json:"autorecorded"`
}

// Expired сообщает, истекла ли запись на момент now.
// Граница включительная: ExpiresAt == now — уже истекла.
func (r *Recording) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// InProgress — запись ещё идёт.
func (r *Recording) InProgress() bool {
	return r.EndedAt == nil
}

// DownloadPath возвращает относительный URL скачивания: /rec/{id}?key={accessKey}.
func (r *Recording) DownloadPath() string {
	return fmt.Sprintf("/rec/%s?key=%s", url.PathEscape(r.ID), url.QueryEscape(r.AccessKey))
}

// FormatDuration форматирует длительность записи: "1h 2m", "3m 4s", "5s".
// Для незавершённой записи возвращает "In progress".
func (r *Recording) FormatDuration() string {
	if r.EndedAt == nil {
		return "In progress"
	}
	seconds := int(r.EndedAt.Sub(r.CreatedAt) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatDate форматирует время в виде "Jan 2, 2006, 3:04 PM".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006, 3:04 PM")
}
