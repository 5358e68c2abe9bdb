package service

import (
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newMockedUserService возвращает сервис над свежим моком репозитория,
// чтобы подтесты не видели вызовов друг друга.
func newMockedUserService(opts ...UserOption) (*mockUserRepo, *UserService) {
	m := new(mockUserRepo)
	return m, NewUserService(m, opts...)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@uni.edu", NormalizeEmail("  John.Doe@UNI.Edu "))
	assert.Equal(t, "a@b@example.com", NormalizeEmail("a@b@EXAMPLE.com"))
	assert.Equal(t, "no-at", NormalizeEmail("no-at"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("empty email", func(t *testing.T) {
		m, svc := newMockedUserService()
		u, err := svc.CreateUser(ctx, "  ", "pw", UserFields{})
		assert.Nil(t, u)
		assert.ErrorIs(t, err, ErrEmailRequired)
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("normalizes and hashes", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "Ann@uni.edu" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")) == nil &&
				u.IsActive && !u.IsStaff && !u.IsSuperuser &&
				u.CampusType == model.CampusStudent
		})).Return(&model.User{ID: 3, Email: "Ann@uni.edu"}, nil).Once()

		u, err := svc.CreateUser(ctx, "Ann@UNI.EDU", "secret", UserFields{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), u.ID)
		m.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("CreateUser", mock.Anything, mock.Anything).Return(nil, repo.ErrDuplicateEmail).Once()

		u, err := svc.CreateUser(ctx, "ann@uni.edu", "secret", UserFields{})
		assert.Nil(t, u)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_CreateSuperuser(t *testing.T) {
	ctx := context.Background()

	t.Run("flags forced", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.IsStaff && u.IsSuperuser && u.IsActive && u.Username == "root" && u.FirstName == "Ada"
		})).Return(&model.User{ID: 1}, nil).Once()

		_, err := svc.CreateSuperuser(ctx, "root@uni.edu", "pw", UserFields{Username: "root", FirstName: "Ada"})
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("explicit false rejected", func(t *testing.T) {
		m, svc := newMockedUserService()
		f := false
		_, err := svc.CreateSuperuser(ctx, "root@uni.edu", "pw", UserFields{IsStaff: &f})
		assert.ErrorIs(t, err, ErrSuperuserFlags)

		_, err = svc.CreateSuperuser(ctx, "root@uni.edu", "pw", UserFields{IsSuperuser: &f})
		assert.ErrorIs(t, err, ErrSuperuserFlags)
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestUserService_GetByID_Absent(t *testing.T) {
	m := new(mockUserRepo)
	svc := NewUserService(m)
	m.On("GetUserByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound).Once()

	u, err := svc.GetByID(context.Background(), 9)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	valid := NewUser{Email: "bob@uni.edu", Password1: "pw12345", Password2: "pw12345", Username: "bob"}

	t.Run("ok", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "bob@uni.edu").Return(nil, gorm.ErrRecordNotFound).Once()
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "bob@uni.edu" && u.Username == "bob" && u.Password != "pw12345"
		})).Return(&model.User{ID: 5, Email: "bob@uni.edu"}, nil).Once()

		u, err := svc.Create(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, int64(5), u.ID)
		m.AssertExpectations(t)
	})

	rejected := map[string]NewUser{
		"password mismatch": {Email: "bob@uni.edu", Password1: "a", Password2: "b"},
		"two at signs":      {Email: "bob@x@uni.edu", Password1: "a", Password2: "a"},
		"no at sign":        {Email: "bob.uni.edu", Password1: "a", Password2: "a"},
		"long username":     {Email: "bob@uni.edu", Password1: "a", Password2: "a", Username: strings.Repeat("u", 41)},
		"long email":        {Email: strings.Repeat("e", 95) + "@u.edu", Password1: "a", Password2: "a"},
	}
	for name, in := range rejected {
		t.Run(name, func(t *testing.T) {
			m, svc := newMockedUserService()
			u, err := svc.Create(ctx, in)
			assert.NoError(t, err)
			assert.Nil(t, u)
			m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("email taken", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "bob@uni.edu").Return(&model.User{ID: 1}, nil).Once()

		u, err := svc.Create(ctx, valid)
		assert.NoError(t, err)
		assert.Nil(t, u)
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("domain case folded before uniqueness check", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "Bob@example.com").Return(&model.User{ID: 1}, nil).Once()

		u, err := svc.Create(ctx, NewUser{Email: "Bob@EXAMPLE.com", Password1: "x", Password2: "x"})
		assert.NoError(t, err)
		assert.Nil(t, u)
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("stores normalized email", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "Bob@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "Bob@example.com"
		})).Return(&model.User{ID: 6, Email: "Bob@example.com"}, nil).Once()

		u, err := svc.Create(ctx, NewUser{Email: " Bob@Example.COM ", Password1: "x", Password2: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Bob@example.com", u.Email)
		m.AssertExpectations(t)
	})
}

func TestUserService_Create_StoresPhoto(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	files := new(mockStorage)
	svc := NewUserService(m, WithMedia(files, nil))

	m.On("GetUserByEmail", mock.Anything, "p@uni.edu").Return(nil, gorm.ErrRecordNotFound).Once()
	files.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "avatars/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, int64(3), "image/png").Return(nil).Once()
	m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return strings.HasPrefix(u.Photo, "avatars/")
	})).Return(&model.User{ID: 2}, nil).Once()

	u, err := svc.Create(ctx, NewUser{
		Email: "p@uni.edu", Password1: "x", Password2: "x",
		Photo: &FileInput{Name: "Me.PNG", Size: 3, ContentType: "image/png", Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.NotNil(t, u)
	m.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("bio only", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "a@uni.edu").Return(&model.User{ID: 4}, nil).Once()
		m.On("UpdateUser", mock.Anything, int64(4), map[string]any{"bio": "hello"}).Return(nil).Once()

		bio := "hello"
		assert.NoError(t, svc.Update(ctx, "a@uni.edu", UserUpdate{Bio: &bio}))
		m.AssertExpectations(t)
	})

	t.Run("password rehashed", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "a@uni.edu").Return(&model.User{ID: 4}, nil).Once()
		m.On("UpdateUser", mock.Anything, int64(4), mock.MatchedBy(func(u map[string]any) bool {
			hash, ok := u["password"].(string)
			return ok && len(u) == 1 && bcrypt.CompareHashAndPassword([]byte(hash), []byte("new")) == nil
		})).Return(nil).Once()

		pw := "new"
		assert.NoError(t, svc.Update(ctx, "a@uni.edu", UserUpdate{Password: &pw}))
		m.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "x@uni.edu").Return(nil, gorm.ErrRecordNotFound).Once()
		assert.ErrorIs(t, svc.Update(ctx, "x@uni.edu", UserUpdate{}), ErrUserNotFound)
	})
}

func TestUserService_DeleteByID(t *testing.T) {
	ctx := context.Background()
	ar := new(mockArticleRepo)
	files := new(mockStorage)

	t.Run("missing", func(t *testing.T) {
		m, svc := newMockedUserService(WithMedia(files, ar))
		m.On("GetUserByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound).Once()

		ok, err := svc.DeleteByID(ctx, 7)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("removes files", func(t *testing.T) {
		m, svc := newMockedUserService(WithMedia(files, ar))
		m.On("GetUserByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, Photo: "avatars/p.png"}, nil).Once()
		ar.On("ListByUser", mock.Anything, int64(2)).Return([]model.Article{{ID: 1, File: "articles/a.pdf"}}, nil).Once()
		m.On("DeleteUser", mock.Anything, int64(2)).Return(true, nil).Once()
		files.On("Delete", mock.Anything, "articles/a.pdf").Return(nil).Once()
		files.On("Delete", mock.Anything, "avatars/p.png").Return(errors.New("gone")).Once()

		ok, err := svc.DeleteByID(ctx, 2)
		assert.NoError(t, err)
		assert.True(t, ok)
		m.AssertExpectations(t)
		files.AssertExpectations(t)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)

	t.Run("ok stamps last_login", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "a@uni.edu").Return(&model.User{ID: 1, Password: string(hash), IsActive: true}, nil).Once()
		m.On("UpdateUser", mock.Anything, int64(1), mock.MatchedBy(func(u map[string]any) bool {
			_, ok := u["last_login"]
			return ok
		})).Return(nil).Once()

		u, err := svc.Authenticate(ctx, "a@UNI.edu", "right")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLogin)
		m.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "a@uni.edu").Return(&model.User{ID: 1, Password: string(hash), IsActive: true}, nil).Once()

		_, err := svc.Authenticate(ctx, "a@uni.edu", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "a@uni.edu").Return(&model.User{ID: 1, Password: string(hash)}, nil).Once()

		_, err := svc.Authenticate(ctx, "a@uni.edu", "right")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		m, svc := newMockedUserService()
		m.On("GetUserByEmail", mock.Anything, "n@uni.edu").Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.Authenticate(ctx, "n@uni.edu", "right")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
