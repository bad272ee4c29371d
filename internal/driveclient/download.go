package driveclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Result — итог одной загрузки.
type Result struct {
	URL  string
	Path string
	Err  error
}

// Downloader — selection.Opener, сохраняющий файлы записей в каталог.
// Каждый Open отправляет Result в канал Results; получатель обязан
// прочитать столько результатов, сколько загрузок запланировано.
type Downloader struct {
	ctx        context.Context
	httpClient *http.Client
	baseURL    string
	dir        string
	results    chan Result
	logger     *slog.Logger
}

// NewDownloader создаёт загрузчик.
// baseURL дополняет относительные URL вида /rec/{id}?key=...
func NewDownloader(ctx context.Context, httpClient *http.Client, baseURL, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		ctx:        ctx,
		httpClient: httpClient,
		baseURL:    normalizeURL(baseURL),
		dir:        dir,
		results:    make(chan Result),
		logger:     logger.With(slog.String("component", "downloader")),
	}
}

// Results возвращает канал результатов загрузок.
func (d *Downloader) Results() <-chan Result {
	return d.results
}

// Open скачивает URL в каталог и сообщает результат.
func (d *Downloader) Open(rawURL string) {
	target, err := d.fetch(rawURL)
	if err != nil {
		d.logger.Warn("Ошибка загрузки записи",
			slog.String("url", redactKey(rawURL)),
			slog.String("error", err.Error()),
		)
	}
	d.results <- Result{URL: rawURL, Path: target, Err: err}
}

func (d *Downloader) fetch(rawURL string) (string, error) {
	full := rawURL
	if strings.HasPrefix(rawURL, "/") {
		full = d.baseURL + rawURL
	}

	req, err := http.NewRequestWithContext(d.ctx, http.MethodGet, full, nil)
	if err != nil {
		return "", fmt.Errorf("создание запроса: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос %s: %w", redactKey(rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("сервер загрузок вернул статус %d", resp.StatusCode)
	}

	target := filepath.Join(d.dir, fileName(resp, req.URL))

	// Пишем во временный файл и переименовываем только после полной загрузки
	f, err := os.CreateTemp(d.dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("создание файла: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("запись файла %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("закрытие файла %s: %w", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("сохранение файла %s: %w", target, err)
	}
	return target, nil
}

// fileName берёт имя из Content-Disposition, иначе последний сегмент пути.
// Каталоги в имени отбрасываются.
func fileName(resp *http.Response, u *url.URL) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(params["filename"]); validFileName(name) {
				return name
			}
		}
	}
	if name := path.Base(u.Path); validFileName(name) {
		return name
	}
	return "recording"
}

// validFileName отсекает имена, указывающие на каталог.
func validFileName(name string) bool {
	switch name {
	case "", ".", "..", "/":
		return false
	}
	if name == string(filepath.Separator) {
		return false
	}
	return true
}

// redactKey скрывает ключ доступа в URL для логов и ошибок.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
