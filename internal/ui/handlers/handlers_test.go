package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/service"
	"github.com/yeecord/dashboard/internal/ui/auth"
	"github.com/yeecord/dashboard/internal/ui/i18n"
)

const testUserID = "123456789012345678"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMain(m *testing.M) {
	logger := testLogger()
	if err := i18n.LoadFromEmbedFS(i18n.Init(logger), logger); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func withSession(r *http.Request) *http.Request {
	s := &auth.SessionData{
		User:      model.DiscordUser{ID: testUserID, Username: "tester"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return r.WithContext(auth.NewContext(r.Context(), s))
}

// --- Моки ---

type fakeProfiles struct {
	profile   service.Profile
	getErr    error
	updateErr error
	updated   []model.DriveSettings
}

func (f *fakeProfiles) GetProfile(context.Context, string) (*service.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p := f.profile
	return &p, nil
}

func (f *fakeProfiles) UpdateDrive(_ context.Context, _ string, desired model.DriveSettings) (model.DriveSettings, error) {
	f.updated = append(f.updated, desired)
	if f.updateErr != nil {
		return model.DriveSettings{}, f.updateErr
	}
	return desired, nil
}

type fakeLister struct {
	recs []model.Recording
	err  error
}

func (f *fakeLister) ListRecent(context.Context, string) ([]model.Recording, error) {
	return f.recs, f.err
}

// --- Страница профиля ---

func TestHandleDashboard(t *testing.T) {
	profiles := &fakeProfiles{profile: service.Profile{
		User:              model.User{ID: testUserID, RewardTier: 10, Drive: model.DefaultDriveSettings()},
		GoogleDriveLinked: true,
	}}
	h := NewDashboardHandler(profiles, testLogger())

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, withSession(httptest.NewRequest(http.MethodGet, "/?r=google_unlinked", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидали 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"tester", "Supporter", "Google Drive unlinked.", `value="flac-zip" selected`} {
		if !strings.Contains(body, want) {
			t.Errorf("страница не содержит %q", want)
		}
	}
}

func TestHandleDashboard_ProfileError(t *testing.T) {
	h := NewDashboardHandler(&fakeProfiles{getErr: errors.New("db down")}, testLogger())

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус = %d, ожидали 500", rec.Code)
	}
}

func TestQueryModal(t *testing.T) {
	tests := []struct {
		query       string
		wantTitle   string
		wantContent string
	}{
		{"error=access_denied&from=google", "An error occurred while connecting to Google.", "You denied access to your account."},
		{"error=invalid_scope&from=google", "An error occurred while connecting to Google.", "You have provided partial permissions to Yeecord. Cloud backup will not work unless all permissions are checked."},
		{"error=server_error&from=discord", "An error occurred while connecting to Discord.", "server_error"},
		{"error=oops", "An error occurred.", "oops"},
		{"r=google_linked", "Google Drive linked!", "You have successfully linked your Google Drive account."},
		{"r=google_unlinked", "Google Drive unlinked.", "You have successfully unlinked your Google Drive account."},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			m := queryModal(context.Background(), q)
			if m == nil {
				t.Fatal("модальное окно не построено")
			}
			if m.Title != tt.wantTitle || m.Content != tt.wantContent {
				t.Errorf("modal = %+v", m)
			}
		})
	}

	if m := queryModal(context.Background(), url.Values{"r": {"unknown"}}); m != nil {
		t.Errorf("модальное окно для неизвестного r: %+v", m)
	}
	if m := queryModal(context.Background(), url.Values{}); m != nil {
		t.Errorf("модальное окно без параметров: %+v", m)
	}
}

func TestQueryModal_Translated(t *testing.T) {
	ctx := i18n.WithLang(context.Background(), "zh-TW")
	m := queryModal(ctx, url.Values{"r": {"google_linked"}})
	if m == nil || m.Title != "已連結 Google 雲端硬碟！" {
		t.Errorf("modal = %+v", m)
	}
}

func TestDesiredFromForm(t *testing.T) {
	current := model.DriveSettings{Enabled: true, Service: "google", Format: "opus", Container: "zip"}

	tests := []struct {
		name string
		form url.Values
		want model.DriveSettings
	}{
		{
			name: "флажок снят, формат не передан",
			form: url.Values{},
			want: model.DriveSettings{Enabled: false, Service: "google", Format: "opus", Container: "zip"},
		},
		{
			name: "новый формат",
			form: url.Values{"enabled": {"true"}, "format": {"aac-mix"}},
			want: model.DriveSettings{Enabled: true, Service: "google", Format: "aac", Container: "mix"},
		},
		{
			name: "половина ключа",
			form: url.Values{"enabled": {"true"}, "format": {"vorbis"}},
			want: model.DriveSettings{Enabled: true, Service: "google", Format: "vorbis", Container: "zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, desiredFromForm(current, tt.form)); diff != "" {
				t.Errorf("desiredFromForm() (-want +got):\n%s", diff)
			}
		})
	}
}

func postDrive(t *testing.T, h *DashboardHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/drive", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleDriveUpdate(rec, withSession(req))
	return rec
}

func TestHandleDriveUpdate_Success(t *testing.T) {
	profiles := &fakeProfiles{profile: service.Profile{
		User:              model.User{ID: testUserID, Drive: model.DefaultDriveSettings()},
		GoogleDriveLinked: true,
	}}
	h := NewDashboardHandler(profiles, testLogger())

	rec := postDrive(t, h, url.Values{"enabled": {"true"}, "format": {"opus-zip"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидали 200", rec.Code)
	}
	want := []model.DriveSettings{{Enabled: true, Service: "google", Format: "opus", Container: "zip"}}
	if diff := cmp.Diff(want, profiles.updated); diff != "" {
		t.Errorf("отправленные настройки (-want +got):\n%s", diff)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="opus-zip" selected`) || !strings.Contains(body, "checked") {
		t.Error("страница не показывает сохранённые настройки")
	}
	if strings.Contains(body, `id="modal"`) {
		t.Error("диалог ошибки при успехе")
	}
}

func TestHandleDriveUpdate_NoChangeSendsNothing(t *testing.T) {
	profiles := &fakeProfiles{profile: service.Profile{
		User: model.User{ID: testUserID, Drive: model.DefaultDriveSettings()},
	}}
	h := NewDashboardHandler(profiles, testLogger())

	postDrive(t, h, url.Values{"format": {"flac-zip"}})

	if len(profiles.updated) != 0 {
		t.Errorf("UpdateDrive() вызван %d раз для неизменённых настроек", len(profiles.updated))
	}
}

func TestHandleDriveUpdate_FailureReverts(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"нет привязки", service.ErrDriveNotLinked, msgDriveNotLinked},
		{"валидация", service.ErrValidation, msgInvalidDrive},
		{"внутренняя ошибка", errors.New("disk full"), msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &fakeProfiles{
				profile:   service.Profile{User: model.User{ID: testUserID, Drive: model.DefaultDriveSettings()}},
				updateErr: tt.err,
			}
			h := NewDashboardHandler(profiles, testLogger())

			rec := postDrive(t, h, url.Values{"enabled": {"true"}, "format": {"aac-zip"}})
			body := rec.Body.String()

			if !strings.Contains(body, drivesync.ErrorTitle) || !strings.Contains(body, tt.wantMsg) {
				t.Errorf("диалог ошибки не содержит %q", tt.wantMsg)
			}
			if !strings.Contains(body, `value="flac-zip" selected`) {
				t.Error("формат не откатился к подтверждённому")
			}
			if strings.Contains(body, " checked") {
				t.Error("флажок не откатился к подтверждённому")
			}
		})
	}
}

func TestServiceRemote_MapsErrors(t *testing.T) {
	profiles := &fakeProfiles{updateErr: service.ErrDriveNotLinked}
	remote := &serviceRemote{profiles: profiles, userID: testUserID, logger: testLogger()}

	err := remote.UpdateDrive(context.Background(), model.DefaultDriveSettings())
	var remoteErr *drivesync.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("ошибка %v не RemoteError", err)
	}
	if remoteErr.Status != http.StatusBadRequest || remoteErr.Message != msgDriveNotLinked {
		t.Errorf("RemoteError = %+v", remoteErr)
	}
}

// --- Страница записей ---

func testRecordings(now time.Time) []model.Recording {
	ended := now.Add(-30 * time.Minute)
	return []model.Recording{
		{ID: "new", AccessKey: "k-new", CreatedAt: now.Add(-time.Hour), EndedAt: &ended, ExpiresAt: now.Add(time.Hour)},
		{ID: "mid", AccessKey: "k-mid", CreatedAt: now.Add(-2 * time.Hour), EndedAt: &ended, ExpiresAt: now.Add(2 * time.Hour)},
		{ID: "old", AccessKey: "k-old", CreatedAt: now.Add(-48 * time.Hour), EndedAt: &ended, ExpiresAt: now.Add(-time.Hour)},
	}
}

func newTestRecordingsHandler(now time.Time) *RecordingsHandler {
	h := NewRecordingsHandler(&fakeLister{recs: testRecordings(now)}, 500*time.Millisecond, testLogger())
	h.clock = func() time.Time { return now }
	return h
}

func postRecordings(t *testing.T, h *RecordingsHandler, form url.Values) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/recordings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleRecordings(rec, withSession(req))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидали 200", rec.Code)
	}
	return rec.Body.String()
}

func hiddenSelected(id string) string {
	return `<input type="hidden" name="selected" value="` + id + `">`
}

func TestHandleRecordings_Get(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)

	rec := httptest.NewRecorder()
	h.HandleRecordings(rec, withSession(httptest.NewRequest(http.MethodGet, "/recordings", nil)))

	body := rec.Body.String()
	if !strings.Contains(body, "Select All") {
		t.Error("нет кнопки выбора всех")
	}
	if strings.Contains(body, `name="selected"`) {
		t.Error("выбор не пуст при первой отрисовке")
	}
	if strings.Contains(body, `class="plan"`) {
		t.Error("план загрузок без действия download")
	}
	if !strings.Contains(body, `data-download-selected data-stagger-ms="500"`) {
		t.Error("кнопка загрузки не получила интервал")
	}
}

func TestHandleRecordings_BaseURLInRowLinks(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)
	h.SetBaseURL("https://dash.example")

	rec := httptest.NewRecorder()
	h.HandleRecordings(rec, withSession(httptest.NewRequest(http.MethodGet, "/recordings", nil)))

	body := rec.Body.String()
	if !strings.Contains(body, `href="https://dash.example/rec/new?key=k-new"`) {
		t.Error("ссылка строки не использует публичный адрес")
	}
	if !strings.Contains(body, `data-download-url="https://dash.example/rec/mid?key=k-mid"`) {
		t.Error("data-download-url не использует публичный адрес")
	}
	if strings.Contains(body, `href="/rec/`) {
		t.Error("осталась относительная ссылка скачивания")
	}
}

func TestHandleRecordings_Toggle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)

	body := postRecordings(t, h, url.Values{"action": {"toggle:mid"}})
	if !strings.Contains(body, hiddenSelected("mid")) || strings.Contains(body, hiddenSelected("new")) {
		t.Error("toggle:mid выбрал не только mid")
	}

	body = postRecordings(t, h, url.Values{"action": {"toggle"}, "id": {"mid"}, "selected": {"mid"}})
	if strings.Contains(body, hiddenSelected("mid")) {
		t.Error("повторный toggle не снял выбор")
	}
}

func TestHandleRecordings_ExpiredNeverSelected(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)

	for _, form := range []url.Values{
		{"action": {"toggle:old"}},
		{"action": {"toggle-all"}},
		{"selected": {"old", "new"}},
	} {
		body := postRecordings(t, h, form)
		if strings.Contains(body, hiddenSelected("old")) {
			t.Errorf("истёкшая запись выбрана для формы %v", form)
		}
	}
}

func TestHandleRecordings_ToggleAll(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)

	body := postRecordings(t, h, url.Values{"action": {"toggle-all"}, "selected": {"mid"}})
	if !strings.Contains(body, hiddenSelected("new")) || !strings.Contains(body, hiddenSelected("mid")) {
		t.Error("toggle-all из частичного выбора не выбрал все доступные")
	}
	if !strings.Contains(body, "Deselect All") {
		t.Error("нет кнопки снятия выбора")
	}

	body = postRecordings(t, h, url.Values{"action": {"toggle-all"}, "selected": {"new", "mid"}})
	if strings.Contains(body, `name="selected"`) {
		t.Error("toggle-all из полного выбора не очистил выбор")
	}
}

func TestHandleRecordings_DownloadPlan(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newTestRecordingsHandler(now)

	body := postRecordings(t, h, url.Values{
		"action":   {"download"},
		"selected": {"mid", "new", "old", "gone"},
	})

	i := strings.Index(body, `class="plan"`)
	if i < 0 {
		t.Fatal("план загрузок не отрисован")
	}
	plan := body[i:]
	if !strings.Contains(plan, "2 downloads ready:") {
		t.Error("нет заголовка плана")
	}
	first := strings.Index(plan, `<li><a href="/rec/new?key=k-new"`)
	second := strings.Index(plan, `<li><a href="/rec/mid?key=k-mid"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("план должен идти new, затем mid:\n%s", plan)
	}
	if strings.Contains(plan, "/rec/old") {
		t.Error("истёкшая запись попала в план")
	}
}

func TestHandleRecordings_ListError(t *testing.T) {
	h := NewRecordingsHandler(&fakeLister{err: errors.New("db down")}, time.Second, testLogger())

	rec := httptest.NewRecorder()
	h.HandleRecordings(rec, withSession(httptest.NewRequest(http.MethodGet, "/recordings", nil)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус = %d, ожидали 500", rec.Code)
	}
}

// --- Язык ---

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name         string
		lang         string
		referer      string
		wantLang     string
		wantLocation string
	}{
		{"zh-TW с возвратом", "zh-tw", "https://dash.example.com/recordings?x=1", "zh-TW", "/recordings"},
		{"неизвестный язык", "ru", "", "en", "/"},
		{"protocol-relative referer", "en", "https://a//evil.example", "en", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/language", strings.NewReader("lang="+tt.lang))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			HandleSetLanguage(rec, req)

			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидали %q", loc, tt.wantLocation)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Value != tt.wantLang {
				t.Errorf("cookie = %+v, ожидали lang=%s", cookies, tt.wantLang)
			}
		})
	}
}
