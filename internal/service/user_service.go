package service

import (
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired      = errors.New("the email must be set")
	ErrSuperuserFlags     = errors.New("superuser must have is_staff=true and is_superuser=true")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorageMissing     = errors.New("media storage is not configured")
)

// UserFields: дополнительные поля при создании пользователя.
// nil-флаги означают "значение по умолчанию".
type UserFields struct {
	Username   string
	FirstName  string
	LastName   string
	CampusType model.CampusType
	Bio        *string

	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// NewUser: данные регистрации.
type NewUser struct {
	Email      string
	Password1  string
	Password2  string
	Username   string
	CampusType model.CampusType
	Photo      *FileInput
}

// UserUpdate: частичное обновление профиля: применяются только не-nil поля.
type UserUpdate struct {
	Password *string
	Username *string
	Bio      *string
}

// UserService инкапсулирует бизнес-логику работы с пользователями.
type UserService struct {
	repo     repo.UserRepository
	articles repo.ArticleRepository
	files    storage.Storage
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// UserOption настраивает UserService.
type UserOption func(*UserService)

// WithMedia подключает хранилище файлов: фото при регистрации и
// удаление файлов работ вместе с пользователем.
func WithMedia(files storage.Storage, articles repo.ArticleRepository) UserOption {
	return func(s *UserService) {
		s.files = files
		s.articles = articles
	}
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *zap.SugaredLogger) UserOption {
	return func(s *UserService) { s.logger = logger }
}

func NewUserService(r repo.UserRepository, opts ...UserOption) *UserService {
	s := &UserService{repo: r, logger: zap.NewNop().Sugar(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail приводит доменную часть адреса к нижнему регистру.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// CreateUser создаёт пользователя с нормализованным email и хешированным паролем.
func (s *UserService) CreateUser(ctx context.Context, email, password string, extra UserFields) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       email,
		Password:    hash,
		Username:    extra.Username,
		FirstName:   extra.FirstName,
		LastName:    extra.LastName,
		CampusType:  extra.CampusType,
		Bio:         extra.Bio,
		IsActive:    boolOr(extra.IsActive, true),
		IsStaff:     boolOr(extra.IsStaff, false),
		IsSuperuser: boolOr(extra.IsSuperuser, false),
	}
	if user.CampusType == "" {
		user.CampusType = model.CampusStudent
	}

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateSuperuser создаёт администратора. Флаги staff/superuser/active
// выставляются в true; явное false для staff или superuser: ошибка.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string, extra UserFields) (*model.User, error) {
	t := true
	if extra.IsStaff == nil {
		extra.IsStaff = &t
	}
	if extra.IsSuperuser == nil {
		extra.IsSuperuser = &t
	}
	if extra.IsActive == nil {
		extra.IsActive = &t
	}
	if !*extra.IsStaff || !*extra.IsSuperuser {
		return nil, ErrSuperuserFlags
	}
	return s.CreateUser(ctx, email, password, extra)
}

// GetByID возвращает пользователя или nil, если его нет.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

// GetByEmail возвращает пользователя или nil, если его нет.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

// EmailTaken сообщает, занят ли email (доменная часть без учёта регистра).
func (s *UserService) EmailTaken(ctx context.Context, email string) (bool, error) {
	u, err := s.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// DeleteByID удаляет пользователя и его работы. false: записи не было.
func (s *UserService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}

	var keys []string
	if s.articles != nil {
		owned, err := s.articles.ListByUser(ctx, id)
		if err != nil {
			return false, err
		}
		for _, a := range owned {
			keys = append(keys, a.File)
		}
	}
	if user.Photo != "" {
		keys = append(keys, user.Photo)
	}

	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.removeFiles(ctx, keys...)
	return true, nil
}

// Create регистрирует пользователя. При нарушении любого условия
// (длины, совпадение паролей, один "@", свободный email) возвращает nil без ошибки.
func (s *UserService) Create(ctx context.Context, in NewUser) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	if utf8.RuneCountInString(in.Username) > model.UsernameMaxLen ||
		utf8.RuneCountInString(email) > model.EmailMaxLen ||
		in.Password1 != in.Password2 ||
		strings.Count(email, "@") != 1 {
		return nil, nil
	}
	taken, err := s.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, nil
	}

	hash, err := hashPassword(in.Password1)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:      email,
		Username:   in.Username,
		Password:   hash,
		CampusType: in.CampusType,
		IsActive:   true,
	}
	if !user.CampusType.Valid() {
		user.CampusType = model.CampusStudent
	}

	if in.Photo != nil {
		if s.files == nil {
			return nil, ErrStorageMissing
		}
		key := storage.NewKey(storage.AvatarsDir, in.Photo.Name)
		if err := s.files.Save(ctx, key, in.Photo.Body, in.Photo.Size, in.Photo.ContentType); err != nil {
			return nil, fmt.Errorf("save photo: %w", err)
		}
		user.Photo = key
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		s.removeFiles(ctx, user.Photo)
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, nil
		}
		return nil, err
	}
	return created, nil
}

// Update перечитывает пользователя по email и применяет только заданные поля.
func (s *UserService) Update(ctx context.Context, email string, upd UserUpdate) error {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	updates := map[string]any{}
	if upd.Password != nil {
		hash, err := hashPassword(*upd.Password)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}
	if upd.Username != nil {
		updates["username"] = *upd.Username
	}
	if upd.Bio != nil {
		updates["bio"] = *upd.Bio
	}
	return s.repo.UpdateUser(ctx, user.ID, updates)
}

// GetAll возвращает всех пользователей.
func (s *UserService) GetAll(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// Search фильтрует пользователей по имени (подстрока), email и роли.
func (s *UserService) Search(ctx context.Context, q repo.UserQuery) ([]model.User, error) {
	if q.Email != "" {
		q.Email = NormalizeEmail(q.Email)
	}
	return s.repo.SearchUsers(ctx, q)
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// Authenticate проверяет email и пароль активного пользователя.
// Для неизвестного email и неверного пароля ошибка одна и та же.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		// выравниваем время ответа с веткой проверки пароля
		dummyHashOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campus-dummy"), bcrypt.DefaultCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateUser(ctx, user.ID, map[string]any{"last_login": now}); err != nil {
		return nil, fmt.Errorf("update last_login: %w", err)
	}
	user.LastLogin = &now
	return user, nil
}

func (s *UserService) removeFiles(ctx context.Context, keys ...string) {
	if s.files == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.Warnw("failed to remove media file", "key", key, "error", err)
		}
	}
}
