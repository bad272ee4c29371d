// Пакет driveclient — HTTP-клиент JSON API dashboard для yeecordctl.
// Поддерживает TLS с кастомным CA (ca_cert в профиле CLI).
// Операции: GetDrive, UpdateDrive (PUT /api/user/drive), ListRecordings.
// Client реализует drivesync.Remote, поэтому команды CLI меняют настройки
// через тот же Reconciler, что и страница.
package driveclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
)

// maxErrorBody — предел чтения тела ответа с ошибкой.
const maxErrorBody = 64 << 10

// TokenProvider — функция, возвращающая токен сессии для Authorization: Bearer.
type TokenProvider func(ctx context.Context) (string, error)

// StaticToken возвращает TokenProvider с фиксированным токеном.
func StaticToken(token string) TokenProvider {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", fmt.Errorf("токен сессии не задан")
		}
		return token, nil
	}
}

// DriveStatus — ответ GET /api/user/drive.
type DriveStatus struct {
	model.DriveSettings
	GoogleDriveLinked bool `json:"googleDriveLinked"`
	RewardTier        int  `json:"rewardTier"`
}

// errorBody — тело ответа с ошибкой API.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client — HTTP-клиент JSON API dashboard.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент API.
// baseURL — адрес dashboard (https://dashboard.example.com).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// tokenProvider — функция получения токена сессии (nil — без авторизации).
func New(baseURL, caCertPath string, tokenProvider TokenProvider, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Debug("CA-сертификат добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		baseURL:       normalizeURL(baseURL),
		httpClient:    httpClient,
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "drive_client")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// BaseURL возвращает адрес dashboard без завершающего слэша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DownloadClient возвращает *http.Client для скачивания файлов записей:
// тот же транспорт (TLS, CA), но без общего таймаута. Время загрузки
// ограничивается контекстом запроса.
func (c *Client) DownloadClient() *http.Client {
	return &http.Client{Transport: c.httpClient.Transport}
}

// GetDrive запрашивает текущие настройки облачного бэкапа.
// GET /api/user/drive.
func (c *Client) GetDrive(ctx context.Context) (*DriveStatus, error) {
	var status DriveStatus
	if err := c.do(ctx, http.MethodGet, "/api/user/drive", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// UpdateDrive отправляет полное желаемое состояние настроек.
// PUT /api/user/drive. Ответ не-2xx возвращается как *drivesync.RemoteError
// с полем "error" из тела (пустым, если тело не JSON).
func (c *Client) UpdateDrive(ctx context.Context, desired model.DriveSettings) error {
	body, err := json.Marshal(desired)
	if err != nil {
		return fmt.Errorf("сериализация настроек: %w", err)
	}
	return c.do(ctx, http.MethodPut, "/api/user/drive", body, nil)
}

// ListRecordings запрашивает последние записи пользователя, новые первыми.
// GET /api/user/recordings.
func (c *Client) ListRecordings(ctx context.Context) ([]model.Recording, error) {
	var recs []model.Recording
	if err := c.do(ctx, http.MethodGet, "/api/user/recordings", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// do выполняет запрос к API и декодирует ответ в out (nil — ответ не читается).
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokenProvider != nil {
		token, err := c.tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("получение токена: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.remoteError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s %s: %w", method, path, err)
	}
	return nil
}

// remoteError читает тело ответа с ошибкой. Нечитаемое тело даёт пустое сообщение.
func (c *Client) remoteError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		c.logger.Debug("Тело ответа с ошибкой не JSON",
			slog.Int("status", resp.StatusCode),
		)
	}

	c.logger.Debug("API вернул ошибку",
		slog.Int("status", resp.StatusCode),
		slog.String("code", eb.Code),
		slog.String("error", eb.Error),
	)
	return &drivesync.RemoteError{Status: resp.StatusCode, Message: eb.Error}
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}
