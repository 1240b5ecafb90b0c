package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/AdLinker/internal/auth"
	"github.com/Totarae/AdLinker/internal/config"
	"github.com/Totarae/AdLinker/internal/database"
	"github.com/Totarae/AdLinker/internal/handlers"
	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/repositories"
	"github.com/Totarae/AdLinker/internal/router"
	"github.com/Totarae/AdLinker/internal/service"
	"github.com/Totarae/AdLinker/internal/storage"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	client := linkapi.New(cfg.LinkAPIBase, cfg.LinkAPIKey, logger,
		linkapi.WithMaxRetries(cfg.MaxRetries),
		linkapi.WithTimeout(time.Duration(cfg.RequestTimeout)*time.Second),
	)

	// Выбор хранилища списка изданий по режиму
	var (
		pubs    storage.PubStore
		dbIface database.DBInterface
	)
	if cfg.Mode == "database" {
		if err := database.RunMigrations(cfg.PgMigrationsPath, cfg.DatabaseDSN, logger); err != nil {
			logger.Fatal("Ошибка применения миграций", zap.Error(err))
		}
		db, err := database.NewDB(cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close()
		dbIface = db
		pubs = repositories.NewPubRepository(db)
	} else {
		path := ""
		if cfg.Mode == "file" {
			path = cfg.FileStoragePath
		}
		pubs = storage.NewFilePubStore(path)
	}

	a := auth.New(cfg.AuthSecret, cfg.LoginUsername, cfg.LoginPassword)
	bulk := service.NewBulkService(client, logger, cfg.DefaultDomain)
	reports := service.NewReportsService(client, logger)

	handler := handlers.NewHandler(bulk, reports, client, pubs, a, dbIface, logger, cfg.DefaultDomain, cfg.Mode)
	r := router.NewRouter(handler, a, logger)

	server := &http.Server{Addr: cfg.ServerAddress, Handler: r}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown server", zap.Error(err))
		}
	}()

	logger.Info("Сервер запущен на ", zap.String("address", cfg.ServerAddress))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Ошибка при запуске сервера: ", zap.Error(err))
	}
}
