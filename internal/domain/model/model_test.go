package model

import (
	"testing"
	"time"
)

func TestRecordingExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"в прошлом", now.Add(-time.Minute), true},
		{"ровно сейчас", now, true},
		{"в будущем", now.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recording{ID: "abc", ExpiresAt: tt.expiresAt}
			if got := rec.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, хотели %v", got, tt.want)
			}
		})
	}
}

func TestRecordingFormatDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := func(d time.Duration) *time.Time {
		e := start.Add(d)
		return &e
	}

	tests := []struct {
		name  string
		ended *time.Time
		want  string
	}{
		{"идёт", nil, "In progress"},
		{"секунды", end(42 * time.Second), "42s"},
		{"минуты", end(3*time.Minute + 4*time.Second), "3m 4s"},
		{"часы", end(2*time.Hour + 5*time.Minute + 59*time.Second), "2h 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recording{CreatedAt: start, EndedAt: tt.ended}
			if got := rec.FormatDuration(); got != tt.want {
				t.Errorf("FormatDuration() = %q, хотели %q", got, tt.want)
			}
		})
	}
}

func TestRecordingDownloadPath(t *testing.T) {
	rec := Recording{ID: "Xy12ab", AccessKey: "k3y"}
	if got, want := rec.DownloadPath(), "/rec/Xy12ab?key=k3y"; got != want {
		t.Errorf("DownloadPath() = %q, хотели %q", got, want)
	}
}

func TestParseFormatKey(t *testing.T) {
	tests := []struct {
		key           string
		wantFormat    string
		wantContainer string
		wantKnown     bool
	}{
		{"flac-zip", "flac", "zip", true},
		{"vorbis-mix", "vorbis", "mix", true},
		{"opus", "opus", "zip", true},
		{"", "flac", "zip", true},
		{"-mix", "flac", "mix", true},
		{"mp3-zip", "mp3", "zip", false},
		{"flac-zip-extra", "flac", "zip-extra", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			format, container, known := ParseFormatKey(tt.key)
			if format != tt.wantFormat || container != tt.wantContainer || known != tt.wantKnown {
				t.Errorf("ParseFormatKey(%q) = (%q, %q, %v), хотели (%q, %q, %v)",
					tt.key, format, container, known, tt.wantFormat, tt.wantContainer, tt.wantKnown)
			}
		})
	}
}

func TestOptionFor(t *testing.T) {
	if got := OptionFor("", ""); got.Value != "flac-zip" {
		t.Errorf("OptionFor(пусто) = %q, хотели flac-zip", got.Value)
	}
	if got := OptionFor("aac", "mix"); got.Title != "AAC Single-Track Mix" {
		t.Errorf("OptionFor(aac, mix) = %q", got.Title)
	}
	if got := OptionFor("mp3", "zip"); got.Value != FormatOptions[0].Value {
		t.Errorf("OptionFor(неизвестный) = %q, хотели первый пункт каталога", got.Value)
	}
}

func TestTierName(t *testing.T) {
	tests := map[int]string{
		-1:  "Greater Weasel",
		0:   "Default",
		30:  "FLAC Demander",
		100: "MP3 God",
		42:  "#42",
	}
	for tier, want := range tests {
		if got := TierName(tier); got != want {
			t.Errorf("TierName(%d) = %q, хотели %q", tier, got, want)
		}
	}
}

func TestDiscordUserAvatarURL(t *testing.T) {
	withAvatar := DiscordUser{ID: "80351110224678912", Avatar: "a_1234"}
	if got, want := withAvatar.AvatarURL(), "https://cdn.discordapp.com/avatars/80351110224678912/a_1234.gif"; got != want {
		t.Errorf("AvatarURL() = %q, хотели %q", got, want)
	}

	legacy := DiscordUser{ID: "1", Discriminator: "0007"}
	if got, want := legacy.AvatarURL(), "https://cdn.discordapp.com/embed/avatars/2.png"; got != want {
		t.Errorf("AvatarURL() = %q, хотели %q", got, want)
	}

	if (&DiscordUser{Discriminator: "0"}).HasDiscriminator() {
		t.Error("Discriminator \"0\" не должен отображаться")
	}
}
