package model

import "strings"

// Значения настроек облачного бэкапа по умолчанию.
const (
	DefaultDriveService   = "google"
	DefaultDriveFormat    = "flac"
	DefaultDriveContainer = "zip"
)

// DriveSettings — настройки загрузки записей в облако.
// Источник истины — сервер; клиент обновляет оптимистично.
type DriveSettings struct {
	Enabled   bool   `json:"enabled"`
	Service   string `json:"service"`
	Format    string `json:"format"`
	Container string `json:"container"`
}

// DefaultDriveSettings возвращает настройки нового пользователя.
func DefaultDriveSettings() DriveSettings {
	return DriveSettings{
		Enabled:   false,
		Service:   DefaultDriveService,
		Format:    DefaultDriveFormat,
		Container: DefaultDriveContainer,
	}
}

// WithDefaults подставляет значения по умолчанию в пустые поля.
func (d DriveSettings) WithDefaults() DriveSettings {
	if d.Service == "" {
		d.Service = DefaultDriveService
	}
	if d.Format == "" {
		d.Format = DefaultDriveFormat
	}
	if d.Container == "" {
		d.Container = DefaultDriveContainer
	}
	return d
}

// FormatKey возвращает ключ выпадающего списка "<format>-<container>".
func (d DriveSettings) FormatKey() string {
	return d.Format + "-" + d.Container
}

// FormatOption — пункт выпадающего списка форматов.
type FormatOption struct {
	Title string
	Value string
}

// FormatOptions — каталог форматов в порядке отображения.
var FormatOptions = []FormatOption{
	{Title: "Audacity Project", Value: "flac-aupzip"},
	{Title: "FLAC", Value: "flac-zip"},
	{Title: "AAC", Value: "aac-zip"},
	{Title: "FLAC Single-Track Mix", Value: "flac-mix"},
	{Title: "AAC Single-Track Mix", Value: "aac-mix"},
	{Title: "Ogg Vorbis Single-Track Mix", Value: "vorbis-mix"},
	{Title: "Ogg FLAC", Value: "oggflac-zip"},
	{Title: "HE-AAC", Value: "heaac-zip"},
	{Title: "Opus", Value: "opus-zip"},
	{Title: "Ogg Vorbis", Value: "vorbis-zip"},
	{Title: "ADPCM wav", Value: "adpcm-zip"},
	{Title: "8-bit wav", Value: "wav8-zip"},
}

// ParseFormatKey разбирает ключ "<format>-<container>".
// Пустые части заменяются на flac и zip. Второй результат — есть ли ключ в каталоге.
func ParseFormatKey(key string) (format, container string, known bool) {
	format, container, _ = strings.Cut(key, "-")
	if format == "" {
		format = DefaultDriveFormat
	}
	if container == "" {
		container = DefaultDriveContainer
	}
	_, known = LookupFormat(format + "-" + container)
	return format, container, known
}

// LookupFormat ищет пункт каталога по ключу.
func LookupFormat(key string) (FormatOption, bool) {
	for _, opt := range FormatOptions {
		if opt.Value == key {
			return opt, true
		}
	}
	return FormatOption{}, false
}

// OptionFor возвращает пункт каталога для пары формат/контейнер.
// Пустые значения заменяются на flac/zip, неизвестная пара — первый пункт каталога.
func OptionFor(format, container string) FormatOption {
	if format == "" {
		format = DefaultDriveFormat
	}
	if container == "" {
		container = DefaultDriveContainer
	}
	if opt, ok := LookupFormat(format + "-" + container); ok {
		return opt
	}
	return FormatOptions[0]
}
