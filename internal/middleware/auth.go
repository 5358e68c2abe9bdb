package middleware

import (
	"CampusPortal/internal/model"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CookieName: cookie с подписанным токеном сессии.
const CookieName = "auth_token"

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	userKey   ctxKey = "user"
)

const defaultSessionTTL = 14 * 24 * time.Hour

// Claims: полезная нагрузка токена сессии.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Session выпускает и проверяет cookie сессии.
type Session struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSession: ttl <= 0 заменяется двумя неделями, secure выставляет флаг Secure у cookie.
func NewSession(secret string, ttl time.Duration, secure bool) *Session {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Session{secret: []byte(secret), ttl: ttl, secure: secure}
}

// SetLoginCookie выдаёт cookie с JWT для пользователя.
func (s *Session) SetLoginCookie(w http.ResponseWriter, userID int64) error {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearLoginCookie удаляет cookie сессии.
func (s *Session) ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Session) parseToken(raw string) (int64, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return 0, false
	}
	return claims.UserID, true
}

// WithAuth читает cookie и кладёт user_id в контекст. Без валидного токена
// запрос проходит анонимно.
func (s *Session) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		if uid, ok := s.parseToken(c.Value); ok {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}

// UserLoader загружает пользователя по id; nil: пользователя нет.
type UserLoader func(ctx context.Context, id int64) (*model.User, error)

// WithCurrentUser загружает пользователя сессии. Удалённый или
// неактивный пользователь считается гостем, его cookie очищается.
func (s *Session) WithCurrentUser(load UserLoader, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := GetUserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			user, err := load(r.Context(), uid)
			if err != nil {
				logger.Errorw("failed to load session user", "user_id", uid, "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil || !user.IsActive {
				s.ClearLoginCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser возвращает пользователя запроса или nil для гостя.
func CurrentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// RequireLogin перенаправляет гостя на страницу входа с параметром next.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			target := "/login/?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
