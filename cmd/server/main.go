package main

import (
	"CampusPortal/internal/config"
	"CampusPortal/internal/handlers"
	"CampusPortal/internal/locale"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/service"
	"CampusPortal/internal/storage"
	"CampusPortal/internal/view"
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// в режиме отладки: человекочитаемые логи, иначе JSON
	var logger *zap.Logger
	var err error
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	files, err := storage.NewStorage(ctx, storage.Config{
		Type:      cfg.StorageType,
		BasePath:  cfg.MediaRoot,
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize media storage", "error", err)
	}

	bundle, err := locale.NewBundle(cfg.DefaultLang)
	if err != nil {
		sugar.Fatalw("failed to load translations", "error", err)
	}
	renderer, err := view.New(cfg.MediaURL, sugar)
	if err != nil {
		sugar.Fatalw("failed to parse templates", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	articleRepo := repo.NewArticleRepository(gormDB)
	userService := service.NewUserService(userRepo,
		service.WithMedia(files, articleRepo),
		service.WithLogger(sugar),
	)
	articleService := service.NewArticleService(articleRepo, files, sugar)

	h := handlers.NewHandler(userService, articleService, files, bundle, renderer, sugar, cfg)

	addr := cfg.BaseURL
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow(
		"Starting server",
		"addr", addr,
		"url", cfg.ServerURL,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"StorageType", cfg.StorageType,
		"MediaURL", cfg.MediaURL,
		"DefaultLang", cfg.DefaultLang,
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		sugar.Fatalw("Failed to listen", "addr", addr, "error", err)
	}
	if err := serve(ctx, srv, ln, sugar); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
