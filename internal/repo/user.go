package repo

import (
	"CampusPortal/internal/model"
	"context"
	"strings"

	"gorm.io/gorm"
)

// UserQuery: параметры поиска пользователей. Пустые поля не фильтруют.
type UserQuery struct {
	Username   string // подстрока без учёта регистра
	Email      string // точное совпадение
	CampusType string // точное совпадение
}

// UserRepository: доступ к таблице users.
type UserRepository interface {
	// CreateUser сохраняет пользователя. ErrDuplicateEmail при занятом email.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByID/GetUserByEmail возвращают gorm.ErrRecordNotFound, если записи нет.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, updates map[string]any) error
	// DeleteUser удаляет пользователя вместе с его работами.
	DeleteUser(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SearchUsers(ctx context.Context, q UserQuery) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrDuplicateEmail
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser удаляет работы и самого пользователя в одной транзакции,
// не полагаясь на ON DELETE CASCADE (в SQLite он работает только при foreign_keys=on).
func (r *userRepo) DeleteUser(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Article{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) SearchUsers(ctx context.Context, q UserQuery) ([]model.User, error) {
	tx := r.db.WithContext(ctx).Model(&model.User{})
	if q.Username != "" {
		tx = tx.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(q.Username)+"%")
	}
	if q.Email != "" {
		tx = tx.Where("email = ?", q.Email)
	}
	if q.CampusType != "" {
		tx = tx.Where("campus_type = ?", q.CampusType)
	}
	var users []model.User
	if err := tx.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
