package bootstrap

import (
	"CampusPortal/internal/config"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/service"
	"CampusPortal/internal/storage"
	"context"
	"fmt"
)

// OpenUserService открывает БД и хранилище файлов из конфигурации,
// выполняет миграции и возвращает (service, cleanup, error).
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func OpenUserService(ctx context.Context, cfg *config.Config) (*service.UserService, func() error, error) {
	db, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }

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
		_ = cleanup()
		return nil, nil, fmt.Errorf("open media storage: %w", err)
	}

	svc := service.NewUserService(
		repo.NewUserRepository(db),
		service.WithMedia(files, repo.NewArticleRepository(db)),
	)
	return svc, cleanup, nil
}
