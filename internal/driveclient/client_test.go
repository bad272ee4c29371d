package driveclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/domain/selection"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupMockAPI создаёт mock HTTP-сервер dashboard.
func setupMockAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(baseURL, "", StaticToken("test-token"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return client
}

// TestClient_UpdateDrive проверяет PUT /api/user/drive с полным состоянием.
func TestClient_UpdateDrive(t *testing.T) {
	var got model.DriveSettings
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/user/drive" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("тело запроса: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(got)
	})

	client := newTestClient(t, server.URL+"/")
	want := model.DriveSettings{Enabled: true, Service: "google", Format: "opus", Container: "zip"}
	if err := client.UpdateDrive(context.Background(), want); err != nil {
		t.Fatalf("Ошибка UpdateDrive: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("отправленное тело (-want +got):\n%s", diff)
	}
}

// TestClient_UpdateDrive_RemoteError проверяет разбор тела ошибки.
func TestClient_UpdateDrive_RemoteError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"JSON с error", http.StatusInternalServerError, `{"error":"disk full"}`, "disk full"},
		{"не JSON", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"пустое тело", http.StatusBadRequest, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := newTestClient(t, server.URL).UpdateDrive(context.Background(), model.DefaultDriveSettings())
			var remoteErr *drivesync.RemoteError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("ошибка %v не RemoteError", err)
			}
			if remoteErr.Status != tt.status || remoteErr.Message != tt.wantMsg {
				t.Errorf("RemoteError = %+v", remoteErr)
			}
		})
	}
}

// TestClient_WithReconciler_RevertsOnServerError — 500 {"error":"disk full"}:
// локальное состояние откатывается, диалог содержит "disk full".
func TestClient_WithReconciler_RevertsOnServerError(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"disk full"}`))
	})

	confirmed := model.DefaultDriveSettings()
	var dialog drivesync.Dialog
	rec := drivesync.New(confirmed, newTestClient(t, server.URL),
		drivesync.NotifierFunc(func(d drivesync.Dialog) { dialog = d }), testLogger())

	err := rec.Change(context.Background(), model.DriveSettings{Enabled: true, Format: "aac", Container: "zip"})
	if err == nil {
		t.Fatal("Change() не вернул ошибку")
	}
	if rec.Local() != confirmed {
		t.Errorf("Local() = %+v, ожидали откат к %+v", rec.Local(), confirmed)
	}
	if rec.Loading() {
		t.Error("Loading() = true после ошибки")
	}
	if dialog.Title != drivesync.ErrorTitle || !strings.Contains(dialog.Message, "disk full") {
		t.Errorf("диалог = %+v", dialog)
	}
}

// TestClient_WithReconciler_Success — успех: локальное состояние сохраняется.
func TestClient_WithReconciler_Success(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	rec := drivesync.New(model.DefaultDriveSettings(), newTestClient(t, server.URL), nil, testLogger())
	desired := model.DriveSettings{Enabled: true, Service: "google", Format: "flac", Container: "mix"}

	if err := rec.Change(context.Background(), desired); err != nil {
		t.Fatalf("Change() ошибка: %v", err)
	}
	if rec.Local() != desired || rec.Confirmed() != desired {
		t.Errorf("Local() = %+v, Confirmed() = %+v", rec.Local(), rec.Confirmed())
	}
	if rec.Loading() {
		t.Error("Loading() = true после успеха")
	}
}

// TestClient_TransportError — недоступный сервер даёт не RemoteError.
func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := newTestClient(t, url).UpdateDrive(context.Background(), model.DefaultDriveSettings())
	if err == nil {
		t.Fatal("ожидали ошибку транспорта")
	}
	var remoteErr *drivesync.RemoteError
	if errors.As(err, &remoteErr) {
		t.Errorf("ошибка транспорта оказалась RemoteError: %v", err)
	}
}

// TestClient_TokenError — ошибка получения токена прерывает запрос.
func TestClient_TokenError(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("запрос отправлен без токена")
	})

	client, err := New(server.URL, "", StaticToken(""), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.ListRecordings(context.Background()); err == nil {
		t.Error("ожидали ошибку получения токена")
	}
}

// TestClient_GetDrive проверяет GET /api/user/drive.
func TestClient_GetDrive(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/user/drive" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"enabled":true,"service":"google","format":"aac","container":"mix","googleDriveLinked":true,"rewardTier":10}`))
	})

	status, err := newTestClient(t, server.URL).GetDrive(context.Background())
	if err != nil {
		t.Fatalf("Ошибка GetDrive: %v", err)
	}
	want := &DriveStatus{
		DriveSettings:     model.DriveSettings{Enabled: true, Service: "google", Format: "aac", Container: "mix"},
		GoogleDriveLinked: true,
		RewardTier:        10,
	}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Errorf("GetDrive() (-want +got):\n%s", diff)
	}
}

// TestClient_ListRecordings проверяет GET /api/user/recordings.
func TestClient_ListRecordings(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.Recording{
			{ID: "a", AccessKey: "ka", CreatedAt: created, ExpiresAt: created.Add(time.Hour)},
			{ID: "b", AccessKey: "kb", CreatedAt: created.Add(-time.Hour), ExpiresAt: created},
		})
	})

	recs, err := newTestClient(t, server.URL).ListRecordings(context.Background())
	if err != nil {
		t.Fatalf("Ошибка ListRecordings: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "a" || !recs[0].CreatedAt.Equal(created) {
		t.Errorf("ListRecordings() = %+v", recs)
	}
}

// TestDownloader_WithController — загрузка выбранных записей в каталог.
func TestDownloader_WithController(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/rec/")
		if r.URL.Query().Get("key") != "k-"+id {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="../`+id+`.flac.zip"`)
		_, _ = w.Write([]byte("audio-" + id))
	})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recs := []model.Recording{
		{ID: "one", AccessKey: "k-one", ExpiresAt: now.Add(time.Hour)},
		{ID: "two", AccessKey: "k-two", ExpiresAt: now.Add(time.Hour)},
		{ID: "gone", AccessKey: "k-gone", ExpiresAt: now.Add(-time.Hour)},
	}
	ctrl := selection.NewController(recs,
		selection.WithClock(func() time.Time { return now }),
		selection.WithStagger(time.Millisecond),
	)
	ctrl.ToggleAll()

	dir := t.TempDir()
	dl := NewDownloader(context.Background(), server.Client(), server.URL, dir, testLogger())
	n := ctrl.DownloadSelected(selection.TimerScheduler{}, dl)
	if n != 2 {
		t.Fatalf("DownloadSelected() = %d, ожидали 2", n)
	}

	for i := 0; i < n; i++ {
		res := <-dl.Results()
		if res.Err != nil {
			t.Errorf("загрузка %s: %v", res.URL, res.Err)
		}
	}

	for _, id := range []string{"one", "two"} {
		data, err := os.ReadFile(filepath.Join(dir, id+".flac.zip"))
		if err != nil {
			t.Errorf("файл %s не создан: %v", id, err)
			continue
		}
		if string(data) != "audio-"+id {
			t.Errorf("содержимое %s = %q", id, data)
		}
	}
}

// TestDownloader_HTTPError — ответ не-200 даёт Result с ошибкой.
func TestDownloader_HTTPError(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	dl := NewDownloader(context.Background(), server.Client(), server.URL, t.TempDir(), testLogger())
	go dl.Open("/rec/x?key=bad")

	res := <-dl.Results()
	if res.Err == nil {
		t.Error("ожидали ошибку для статуса 403")
	}
	if strings.Contains(res.Err.Error(), "bad") {
		t.Errorf("ключ доступа попал в текст ошибки: %v", res.Err)
	}
}

func TestRedactKey(t *testing.T) {
	if got := redactKey("/rec/abc?key=secret"); got != "/rec/abc?key=REDACTED" {
		t.Errorf("redactKey() = %q", got)
	}
	if got := redactKey("/rec/abc"); got != "/rec/abc" {
		t.Errorf("redactKey() без ключа = %q", got)
	}
}

// TestDownloader_TruncatedBodyLeavesNoFile — оборванная загрузка не оставляет файлов в каталоге.
func TestDownloader_TruncatedBodyLeavesNoFile(t *testing.T) {
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="rec.zip"`)
		w.Header().Set("Content-Length", "1024")
		_, _ = w.Write([]byte("partial"))
	})

	dir := t.TempDir()
	dl := NewDownloader(context.Background(), server.Client(), server.URL, dir, testLogger())
	go dl.Open("/rec/x?key=k")

	res := <-dl.Results()
	if res.Err == nil {
		t.Fatal("ожидали ошибку для оборванного ответа")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("в каталоге остались файлы: %v", entries)
	}
}

// TestDownloader_CancelledContextLeavesNoFile — отмена контекста посреди тела ответа.
func TestDownloader_CancelledContextLeavesNoFile(t *testing.T) {
	release := make(chan struct{})
	server := setupMockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="slow.zip"`)
		_, _ = w.Write([]byte("first chunk"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()
	dl := NewDownloader(ctx, server.Client(), server.URL, dir, testLogger())
	go dl.Open("/rec/slow?key=k")

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case res := <-dl.Results():
		if res.Err == nil {
			t.Error("ожидали ошибку после отмены контекста")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("загрузка не прервана отменой контекста")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("в каталоге остались файлы: %v", entries)
	}
}

func TestClient_DownloadClientHasNoTimeout(t *testing.T) {
	c, err := New("http://localhost", "", StaticToken("t"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	dc := c.DownloadClient()
	if dc.Timeout != 0 {
		t.Errorf("Timeout = %v, ожидали 0", dc.Timeout)
	}
	if dc == c.httpClient {
		t.Error("DownloadClient() вернул клиент API")
	}
}

func TestFileName(t *testing.T) {
	u := func(raw string) *url.URL {
		parsed, err := url.Parse(raw)
		if err != nil {
			t.Fatal(err)
		}
		return parsed
	}

	tests := []struct {
		name        string
		disposition string
		path        string
		want        string
	}{
		{"имя из заголовка", `attachment; filename="a.flac.zip"`, "/rec/a", "a.flac.zip"},
		{"каталоги отбрасываются", `attachment; filename="../../etc/passwd"`, "/rec/a", "passwd"},
		{"родительский каталог", `attachment; filename=".."`, "/rec/a", "a"},
		{"текущий каталог", `attachment; filename="."`, "/rec/a", "a"},
		{"без заголовка", "", "/rec/b", "b"},
		{"путь из точек", `attachment; filename=".."`, "/rec/..", "recording"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.disposition != "" {
				resp.Header.Set("Content-Disposition", tt.disposition)
			}
			if got := fileName(resp, u(tt.path)); got != tt.want {
				t.Errorf("fileName() = %q, ожидали %q", got, tt.want)
			}
		})
	}
}
