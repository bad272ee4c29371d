package pages

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/domain/selection"
	"github.com/yeecord/dashboard/internal/ui/i18n"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := i18n.LoadFromEmbedFS(i18n.Init(logger), logger); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func renderIndex(t *testing.T, data IndexData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Index(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() ошибка: %v", err)
	}
	return buf.String()
}

func renderRecordings(t *testing.T, data RecordingsData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Recordings(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() ошибка: %v", err)
	}
	return buf.String()
}

func TestIndex_EscapesUserInput(t *testing.T) {
	html := renderIndex(t, IndexData{
		User:  model.DiscordUser{ID: "1", Username: `<script>alert(1)</script>`},
		Drive: model.DefaultDriveSettings(),
	})
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("имя пользователя не экранировано")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("экранированное имя не найдено")
	}
}

func TestIndex_ToggleDisabledWithoutLink(t *testing.T) {
	html := renderIndex(t, IndexData{
		User:  model.DiscordUser{ID: "1", Username: "u"},
		Drive: model.DefaultDriveSettings(),
	})
	if !strings.Contains(html, `name="enabled" value="true" data-autosubmit disabled>`) {
		t.Error("переключатель доступен без привязки Google Drive")
	}
	if !strings.Contains(html, `title="`) {
		t.Error("нет подсказки о привязке Google Drive")
	}
	if !strings.Contains(html, `href="/api/google/oauth"`) {
		t.Error("нет ссылки привязки Google")
	}
}

func TestIndex_LoadingDisablesAllControls(t *testing.T) {
	data := IndexData{
		User:              model.DiscordUser{ID: "1", Username: "u"},
		Drive:             model.DriveSettings{Enabled: true, Service: "google", Format: "flac", Container: "zip"},
		GoogleDriveLinked: true,
	}

	idle := renderIndex(t, data)
	if strings.Contains(idle, " disabled") {
		t.Error("элементы управления заблокированы без запроса в полёте")
	}

	data.Loading = true
	html := renderIndex(t, data)
	for name, want := range map[string]string{
		"переключатель": `name="enabled" value="true" data-autosubmit checked disabled>`,
		"выбор формата": `<select form="drive-form" name="format" data-autosubmit disabled>`,
		"кнопка Save":   `form="drive-form" data-autosubmit-hide disabled>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("%s не заблокирован во время запроса", name)
		}
	}
}

func TestIndex_SelectedFormatAndModal(t *testing.T) {
	html := renderIndex(t, IndexData{
		User:              model.DiscordUser{ID: "1", Username: "u"},
		Drive:             model.DriveSettings{Enabled: true, Service: "google", Format: "opus", Container: "zip"},
		GoogleDriveLinked: true,
		RewardTier:        30,
		Modal:             &Modal{Title: "An error occurred.", Content: "disk full"},
	})
	if !strings.Contains(html, `value="opus-zip" selected`) {
		t.Error("выбранный формат не отмечен")
	}
	if !strings.Contains(html, "FLAC Demander") || !strings.Contains(html, `class="tier-supporter"`) {
		t.Error("уровень поддержки не отрисован")
	}
	if !strings.Contains(html, `id="modal"`) || !strings.Contains(html, "disk full") {
		t.Error("модальное окно не отрисовано")
	}
}

func TestIndex_GoogleDisconnectIsPostForm(t *testing.T) {
	html := renderIndex(t, IndexData{
		User:              model.DiscordUser{ID: "1", Username: "u"},
		Drive:             model.DefaultDriveSettings(),
		GoogleDriveLinked: true,
	})
	if !strings.Contains(html, `<form method="post" action="/api/google/disconnect">`) {
		t.Error("нет формы отвязки Google")
	}
	if strings.Contains(html, `href="/api/google/disconnect"`) {
		t.Error("отвязка Google доступна ссылкой (GET)")
	}
	// Форма отвязки не вложена в форму настроек
	if strings.Count(html, "<form") != strings.Count(html, "</form>") ||
		strings.Contains(html, `data-lock><form`) {
		t.Error("формы вложены друг в друга")
	}
}

func TestLayout_LanguageSwitch(t *testing.T) {
	html := renderIndex(t, IndexData{User: model.DiscordUser{ID: "1"}, Drive: model.DefaultDriveSettings()})
	if !strings.HasPrefix(html, "<!doctype html><html lang=\"en\">") {
		t.Errorf("начало документа: %.40q", html)
	}
	if !strings.Contains(html, `<input type="hidden" name="lang" value="zh-TW">`) {
		t.Error("переключатель не предлагает zh-TW")
	}
}

func testRecordingsData() RecordingsData {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Hour)
	return RecordingsData{
		User: model.DiscordUser{ID: "1", Username: "u"},
		Rows: []RecordingRow{
			{
				Recording:   model.Recording{ID: "live", AccessKey: "k1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
				Selected:    true,
				DownloadURL: "https://dash.example/rec/live?key=k1",
			},
			{
				Recording:   model.Recording{ID: "next", AccessKey: "k3", CreatedAt: now, EndedAt: &ended, ExpiresAt: now.Add(time.Hour)},
				DownloadURL: "https://dash.example/rec/next?key=k3",
			},
			{
				Recording:   model.Recording{ID: "old", AccessKey: "k2", CreatedAt: now.Add(-2 * time.Hour), EndedAt: &ended, ExpiresAt: now.Add(-time.Minute)},
				Expired:     true,
				DownloadURL: "https://dash.example/rec/old?key=k2",
			},
		},
		SelectableCount: 2,
		SelectedCount:   1,
		Stagger:         500 * time.Millisecond,
	}
}

func TestRecordings_Rows(t *testing.T) {
	html := renderRecordings(t, testRecordingsData())

	if !strings.Contains(html, `<input type="hidden" name="selected" value="live">`) {
		t.Error("выбор не сохранён в скрытом поле")
	}
	if strings.Contains(html, `value="toggle:old"`) {
		t.Error("у истёкшей записи есть кнопка выбора")
	}
	if strings.Contains(html, "rec/old?key=k2") {
		t.Error("у истёкшей записи есть ссылка скачивания")
	}
	if !strings.Contains(html, "Select All") || !strings.Contains(html, "Download 1 Selected") {
		t.Error("панель действий не отрисована")
	}
	if !strings.Contains(html, `href="https://dash.example/rec/live?key=k1"`) {
		t.Error("ссылка строки не использует публичный адрес")
	}
	if strings.Contains(html, `class="plan"`) {
		t.Error("план загрузок без действия download")
	}
}

func TestRecordings_BatchDownloadAttributes(t *testing.T) {
	html := renderRecordings(t, testRecordingsData())

	if !strings.Contains(html, `value="download" data-download-selected data-stagger-ms="500">`) {
		t.Error("кнопка пакетной загрузки без data-атрибутов")
	}
	if !strings.Contains(html, `data-download-url="https://dash.example/rec/live?key=k1" data-expires-at="2024-01-01T13:00:00Z" data-selected>`) {
		t.Error("выбранная строка без data-атрибутов загрузки")
	}
	if !strings.Contains(html, `data-download-url="https://dash.example/rec/next?key=k3" data-expires-at="2024-01-01T13:00:00Z">`) {
		t.Error("невыбранная строка отмечена как выбранная")
	}
	if strings.Count(html, "data-selected") != 1 {
		t.Errorf("data-selected встречается %d раз, ожидали 1", strings.Count(html, "data-selected"))
	}
}

func TestRecordings_PlanFallback(t *testing.T) {
	data := testRecordingsData()
	data.Plan = []selection.Download{
		{RecordingID: "live", URL: "https://dash.example/rec/live?key=k1"},
		{RecordingID: "next", URL: "https://dash.example/rec/next?key=k3", Delay: 500 * time.Millisecond},
	}

	html := renderRecordings(t, data)
	i := strings.Index(html, `<div class="plan" role="status">`)
	if i < 0 {
		t.Fatal("план загрузок не отрисован")
	}
	plan := html[i:]
	if !strings.Contains(plan, "2 downloads ready:") {
		t.Error("нет заголовка плана")
	}
	first := strings.Index(plan, `<li><a href="https://dash.example/rec/live?key=k1"`)
	second := strings.Index(plan, `<li><a href="https://dash.example/rec/next?key=k3"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("ссылки плана отсутствуют или не по порядку:\n%s", plan)
	}
}

func TestRecordings_Empty(t *testing.T) {
	html := renderRecordings(t, RecordingsData{User: model.DiscordUser{ID: "1"}})
	if !strings.Contains(html, "No recordings yet.") {
		t.Error("нет текста пустого списка")
	}
	if strings.Contains(html, `value="toggle-all"`) {
		t.Error("кнопка выбора всех без доступных записей")
	}
}
