package repo

import (
	"CampusPortal/internal/model"
	"context"

	"gorm.io/gorm"
)

// ArticleRepository определяет контракт доступа к Article для слоя сервиса.
// Все выборки, кроме ListAll, ограничены владельцем.
type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error

	// ListAll возвращает работы всех пользователей, новые первыми (id по убыванию).
	ListAll(ctx context.Context) ([]model.Article, error)
	// ListByUser возвращает работы пользователя, новые первыми.
	ListByUser(ctx context.Context, userID int64) ([]model.Article, error)

	// GetByID ищет работу по паре (id, владелец). gorm.ErrRecordNotFound, если не найдено.
	GetByID(ctx context.Context, userID, id int64) (*model.Article, error)
	Update(ctx context.Context, userID, id int64, updates map[string]any) error
	Delete(ctx context.Context, userID, id int64) (bool, error)

	// CountByType группирует работы пользователя по типу.
	CountByType(ctx context.Context, userID int64) (map[model.ArticleType]int64, error)
}

type articleRepo struct {
	db *gorm.DB
}

// NewArticleRepository создаёт реализацию репозитория для Article.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func (r *articleRepo) Create(ctx context.Context, a *model.Article) error {
	return r.db.WithContext(ctx).Omit("User").Create(a).Error
}

func (r *articleRepo) ListAll(ctx context.Context) ([]model.Article, error) {
	var out []model.Article
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *articleRepo) ListByUser(ctx context.Context, userID int64) ([]model.Article, error) {
	var out []model.Article
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *articleRepo) GetByID(ctx context.Context, userID, id int64) (*model.Article, error) {
	var a model.Article
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update применяет изменения к работе владельца.
// Если работа не найдена (или чужая): gorm.ErrRecordNotFound.
func (r *articleRepo) Update(ctx context.Context, userID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *articleRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Article{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

type typeCountRow struct {
	Type  model.ArticleType
	Total int64
}

func (r *articleRepo) CountByType(ctx context.Context, userID int64) (map[model.ArticleType]int64, error) {
	var rows []typeCountRow
	err := r.db.WithContext(ctx).
		Model(&model.Article{}).
		Select("type, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.ArticleType]int64, len(rows))
	for _, row := range rows {
		out[row.Type] = row.Total
	}
	return out, nil
}
