// Пакет server — HTTP-сервер dashboard с graceful shutdown.
// Без TLS — TLS termination на reverse proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yeecord/dashboard/internal/api/handlers"
	"github.com/yeecord/dashboard/internal/api/middleware"
	"github.com/yeecord/dashboard/internal/config"
	uihandlers "github.com/yeecord/dashboard/internal/ui/handlers"
	"github.com/yeecord/dashboard/internal/ui/i18n"
	uimiddleware "github.com/yeecord/dashboard/internal/ui/middleware"
	"github.com/yeecord/dashboard/internal/ui/static"
)

// Handlers — обработчики и middleware, из которых собираются маршруты.
type Handlers struct {
	Health     *handlers.HealthHandler
	API        *handlers.APIHandler
	Session    *handlers.SessionHandler
	Dashboard  *uihandlers.DashboardHandler
	Recordings *uihandlers.RecordingsHandler
	APIAuth    *middleware.SessionAuth
	UIAuth     *uimiddleware.UIAuth
}

// Server — HTTP-сервер dashboard.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(cfg, logger, h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты dashboard.
//
//	/health/*, /metrics, /static/*      — публичные
//	/api/user/*                         — JSON API, 401 без сессии
//	/, /drive, /recordings              — страницы, redirect на вход без сессии
//	POST /api/google/disconnect         — форма страницы профиля, redirect
//	/api/logout, /language              — без сессии
func NewRouter(cfg *config.Config, logger *slog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Health и metrics проверяются оркестратором напрямую
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Get("/api/logout", h.Session.Logout)

	// JSON API
	router.Route("/api/user", func(r chi.Router) {
		r.Use(h.APIAuth.Middleware())
		r.Get("/drive", h.API.GetDrive)
		r.Get("/recordings", h.API.ListRecordings)
		r.With(middleware.RateLimit(middleware.RateLimitConfig{
			RequestLimit: cfg.DriveRateLimit,
			WindowSize:   time.Minute,
			KeyFunc:      middleware.KeyBySessionUser,
		})).Put("/drive", h.API.UpdateDrive)
	})

	// Страницы
	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Post("/language", uihandlers.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(h.UIAuth.Middleware())
			r.Get("/", h.Dashboard.HandleDashboard)
			r.Post("/drive", h.Dashboard.HandleDriveUpdate)
			r.Get("/recordings", h.Recordings.HandleRecordings)
			r.Post("/recordings", h.Recordings.HandleRecordings)
			r.Post("/api/google/disconnect", h.Session.GoogleDisconnect)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Порт должен открыться за ListenTimeout, иначе процесс считается неготовым
	listenCtx, cancel := context.WithTimeout(ctx, s.cfg.ListenTimeout)
	defer cancel()

	var lc net.ListenConfig
	ln, err := lc.Listen(listenCtx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("ошибка открытия порта %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx, затем выполняет graceful shutdown
// с таймаутом ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", ln.Addr().String()),
		)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
