package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DiscordUser — пользователь Discord из токена сессии.
type DiscordUser struct {
	// ID — snowflake пользователя
	ID string `json:"id"`
	// Username — имя пользователя
	Username string `json:"username"`
	// Discriminator — устаревший тег "#1234" ("0" у новых аккаунтов)
	Discriminator string `json:"discriminator"`
	// Avatar — хеш аватара (пустой — аватар по умолчанию)
	Avatar string `json:"avatar,omitempty"`
}

// HasDiscriminator — показывать ли "#1234" после имени.
func (u *DiscordUser) HasDiscriminator() bool {
	return u.Discriminator != "" && u.Discriminator != "0"
}

// AvatarURL возвращает URL аватара на CDN Discord.
// Без собственного аватара — один из аватаров по умолчанию.
func (u *DiscordUser) AvatarURL() string {
	if u.Avatar != "" {
		ext := "png"
		if strings.HasPrefix(u.Avatar, "a_") {
			ext = "gif"
		}
		return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.%s", u.ID, u.Avatar, ext)
	}

	var index uint64
	if u.HasDiscriminator() {
		d, _ := strconv.ParseUint(u.Discriminator, 10, 64)
		index = d % 5
	} else {
		id, _ := strconv.ParseUint(u.ID, 10, 64)
		index = (id >> 22) % 6
	}
	return fmt.Sprintf("https://cdn.discordapp.com/embed/avatars/%d.png", index)
}

// User — запись пользователя в таблице users.
type User struct {
	// ID — snowflake пользователя Discord
	ID string
	// RewardTier — уровень поддержки (Patreon)
	RewardTier int
	// Drive — настройки облачного бэкапа
	Drive DriveSettings
}

// Имена уровней поддержки.
var tierNames = map[int]string{
	-1:  "Greater Weasel",
	0:   "Default",
	10:  "Supporter",
	20:  "Better Supporter",
	30:  "FLAC Demander",
	100: "MP3 God",
}

// TierName возвращает название уровня или "#<tier>" для неизвестных.
func TierName(tier int) string {
	if name, ok := tierNames[tier]; ok {
		return name
	}
	return "#" + strconv.Itoa(tier)
}
