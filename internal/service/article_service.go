package service

import (
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileInput: загруженный файл, уже прошедший проверку формы.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ArticleInput: данные формы работы. File обязателен только при создании.
type ArticleInput struct {
	Type        model.ArticleType
	Description string
	Name        string
	File        *FileInput
}

// TypeCount: количество работ одного типа.
type TypeCount struct {
	Type  model.ArticleType
	Count int64
}

// ArticleService инкапсулирует бизнес-логику работы со студенческими работами.
type ArticleService struct {
	repo   repo.ArticleRepository
	files  storage.Storage
	logger *zap.SugaredLogger
}

func NewArticleService(r repo.ArticleRepository, files storage.Storage, logger *zap.SugaredLogger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ArticleService{repo: r, files: files, logger: logger}
}

// displayName строит название работы из имени файла.
func displayName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return slug.Make(base)
}

func (s *ArticleService) store(ctx context.Context, f *FileInput) (string, error) {
	key := storage.NewKey(storage.ArticlesDir, f.Name)
	if err := s.files.Save(ctx, key, f.Body, f.Size, f.ContentType); err != nil {
		return "", fmt.Errorf("save article file: %w", err)
	}
	return key, nil
}

// Create сохраняет файл и создаёт работу владельца.
func (s *ArticleService) Create(ctx context.Context, ownerID int64, in ArticleInput) (*model.Article, error) {
	if in.File == nil {
		return nil, errors.New("article file is required")
	}
	typ := in.Type
	if typ == "" {
		typ = model.ArticleLaba
	}
	key, err := s.store(ctx, in.File)
	if err != nil {
		return nil, err
	}

	a := &model.Article{
		UserID:       ownerID,
		Name:         in.Name,
		File:         key,
		OriginalName: filepath.Base(in.File.Name),
		Description:  in.Description,
		Type:         typ,
	}
	if a.Name == "" {
		a.Name = displayName(in.File.Name)
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.remove(ctx, key)
		return nil, err
	}
	return a, nil
}

// Feed: все работы, новые первыми.
func (s *ArticleService) Feed(ctx context.Context) ([]model.Article, error) {
	return s.repo.ListAll(ctx)
}

// ListByOwner: работы пользователя, новые первыми.
func (s *ArticleService) ListByOwner(ctx context.Context, ownerID int64) ([]model.Article, error) {
	return s.repo.ListByUser(ctx, ownerID)
}

// TypeCounts возвращает по одной записи на каждый тип в фиксированном порядке.
func (s *ArticleService) TypeCounts(ctx context.Context, ownerID int64) ([]TypeCount, error) {
	counts, err := s.repo.CountByType(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	types := model.ArticleTypes()
	out := make([]TypeCount, 0, len(types))
	for _, t := range types {
		out = append(out, TypeCount{Type: t, Count: counts[t]})
	}
	return out, nil
}

// GetOwned ищет работу владельца. nil без ошибки, если её нет или она чужая.
func (s *ArticleService) GetOwned(ctx context.Context, ownerID, id int64) (*model.Article, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return a, err
}

// Update меняет тип и описание работы; новый файл заменяет прежний.
func (s *ArticleService) Update(ctx context.Context, a *model.Article, in ArticleInput) error {
	updates := map[string]any{
		"description": in.Description,
	}
	if in.Type != "" {
		updates["type"] = in.Type
	}
	if in.Name != "" {
		updates["name"] = in.Name
	}

	var oldKey, newKey string
	if in.File != nil {
		key, err := s.store(ctx, in.File)
		if err != nil {
			return err
		}
		oldKey, newKey = a.File, key
		updates["file"] = key
		updates["original_name"] = filepath.Base(in.File.Name)
	}

	if err := s.repo.Update(ctx, a.UserID, a.ID, updates); err != nil {
		s.remove(ctx, newKey)
		return err
	}
	s.remove(ctx, oldKey)
	return nil
}

// Delete удаляет работу владельца. false: работы нет или она чужая.
func (s *ArticleService) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	a, err := s.GetOwned(ctx, ownerID, id)
	if err != nil || a == nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.remove(ctx, a.File)
	return true, nil
}

func (s *ArticleService) remove(ctx context.Context, key string) {
	if key == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warnw("failed to remove article file", "key", key, "error", err)
	}
}
