package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Каталоги внутри медиа-хранилища.
const (
	AvatarsDir  = "avatars"
	ArticlesDir = "articles"
)

// ErrInvalidKey: пустой или некорректный ключ объекта.
var ErrInvalidKey = errors.New("invalid media key")

// Storage: хранилище загруженных файлов (аватары, работы).
type Storage interface {
	// Save сохраняет содержимое под ключом key (например "articles/<uuid>-name.pdf").
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete удаляет объект. Отсутствие объекта ошибкой не считается.
	Delete(ctx context.Context, key string) error
	// Serve отдаёт объект в HTTP-ответ.
	Serve(w http.ResponseWriter, r *http.Request, key string)
}

// Config: параметры выбора и инициализации хранилища.
type Config struct {
	Type     string // local | minio
	BasePath string // для local

	Endpoint  string // для minio
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewStorage создаёт хранилище по типу из конфигурации.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.BasePath)
	case "minio":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// NewKey строит уникальный ключ объекта: dir/<uuid>-<slug>.<ext>.
// Расширение приводится к нижнему регистру.
func NewKey(dir, originalName string) string {
	base := filepath.Base(originalName)
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if len(name) > 64 {
		name = name[:64]
	}
	id := uuid.NewString()
	if name == "" {
		return path.Join(dir, id+ext)
	}
	return path.Join(dir, id+"-"+name+ext)
}

// cleanKey нормализует ключ и отсекает выход за пределы хранилища.
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
