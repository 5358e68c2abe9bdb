package service

import (
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/storage"
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, id int64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) SearchUsers(ctx context.Context, q repo.UserQuery) ([]model.User, error) {
	args := m.Called(ctx, q)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.ArticleRepository
type mockArticleRepo struct{ mock.Mock }

func (m *mockArticleRepo) Create(ctx context.Context, a *model.Article) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockArticleRepo) ListAll(ctx context.Context) ([]model.Article, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Article)
	return out, args.Error(1)
}

func (m *mockArticleRepo) ListByUser(ctx context.Context, userID int64) ([]model.Article, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]model.Article)
	return out, args.Error(1)
}

func (m *mockArticleRepo) GetByID(ctx context.Context, userID, id int64) (*model.Article, error) {
	args := m.Called(ctx, userID, id)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockArticleRepo) Update(ctx context.Context, userID, id int64, updates map[string]any) error {
	return m.Called(ctx, userID, id, updates).Error(0)
}

func (m *mockArticleRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockArticleRepo) CountByType(ctx context.Context, userID int64) (map[model.ArticleType]int64, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(map[model.ArticleType]int64)
	return out, args.Error(1)
}

var _ repo.ArticleRepository = (*mockArticleRepo)(nil)

// мок для storage.Storage
type mockStorage struct{ mock.Mock }

func (m *mockStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, r, size, contentType).Error(0)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) Serve(w http.ResponseWriter, r *http.Request, key string) {
	m.Called(w, r, key)
}

var _ storage.Storage = (*mockStorage)(nil)
