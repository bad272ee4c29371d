// Точка входа dashboard — личный кабинет пользователя Yeecord.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт сервисный слой, API и UI handlers, запускает topologymetrics
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/yeecord/dashboard/internal/api/contract"
	"github.com/yeecord/dashboard/internal/api/handlers"
	"github.com/yeecord/dashboard/internal/api/middleware"
	"github.com/yeecord/dashboard/internal/config"
	"github.com/yeecord/dashboard/internal/database"
	"github.com/yeecord/dashboard/internal/repository"
	"github.com/yeecord/dashboard/internal/server"
	"github.com/yeecord/dashboard/internal/service"
	"github.com/yeecord/dashboard/internal/ui/auth"
	uihandlers "github.com/yeecord/dashboard/internal/ui/handlers"
	"github.com/yeecord/dashboard/internal/ui/i18n"
	uimiddleware "github.com/yeecord/dashboard/internal/ui/middleware"
)

// linkCacheSize — максимум пользователей в кэше статуса привязки Google Drive.
const linkCacheSize = 10000

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Dashboard запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("YD_DEPHEALTH_GROUP") == "" {
		logger.Warn("YD_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics: проверка идёт
	// через тот же пул и замечает его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	userRepo := repository.NewUserRepository(pool)
	driveRepo := repository.NewGoogleDriveRepository(pool)
	recordingRepo := repository.NewRecordingRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Services
	linkCache := service.NewLinkCache(linkCacheSize, cfg.CacheTTL)
	profileSvc := service.NewProfileService(userRepo, driveRepo, txRunner, linkCache, logger)
	recordingSvc := service.NewRecordingService(recordingRepo, cfg.RecordingsLimit, logger)

	// 7. Контракт JSON API
	validator, err := contract.NewValidator(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Переводы интерфейса
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Сессии: secure cookie, если сайт открыт по https
	secureCookie := strings.HasPrefix(cfg.PublicURL, "https")
	sessionMgr, err := auth.NewSessionManager(cfg.JWTSecret, secureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Handlers
	recordingsHandler := uihandlers.NewRecordingsHandler(recordingSvc, cfg.DownloadStagger, logger)
	recordingsHandler.SetBaseURL(cfg.PublicURL)

	h := server.Handlers{
		Health:     handlers.NewHealthHandler(database.NewReadinessChecker(pool)),
		API:        handlers.NewAPIHandler(profileSvc, recordingSvc, validator, logger),
		Session:    handlers.NewSessionHandler(sessionMgr, profileSvc, logger),
		Dashboard:  uihandlers.NewDashboardHandler(profileSvc, logger),
		Recordings: recordingsHandler,
		APIAuth:    middleware.NewSessionAuth(sessionMgr, logger),
		UIAuth:     uimiddleware.NewUIAuth(sessionMgr, cfg.LoginURL, logger),
	}

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"dashboard",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Dashboard остановлен")
}
