package handlers_test

import (
	"CampusPortal/internal/config"
	"CampusPortal/internal/handlers"
	"CampusPortal/internal/locale"
	"CampusPortal/internal/middleware"
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"CampusPortal/internal/service"
	"CampusPortal/internal/storage"
	"CampusPortal/internal/view"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testEnv struct {
	router   http.Handler
	users    repo.UserRepository
	articles repo.ArticleRepository
	userSvc  *service.UserService
	artSvc   *service.ArticleService
	files    *storage.LocalStorage
	mediaDir string
}

// --- Helpers ---
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{AuthSecret: testSecret, MediaURL: "/media/", SessionTTL: time.Hour}
	logger := zap.NewNop().Sugar()

	mediaDir := t.TempDir()
	files, err := storage.NewLocalStorage(mediaDir)
	require.NoError(t, err)

	ur := repo.NewUserRepository(db)
	ar := repo.NewArticleRepository(db)
	userSvc := service.NewUserService(ur, service.WithMedia(files, ar), service.WithLogger(logger))
	artSvc := service.NewArticleService(ar, files, logger)

	bundle, err := locale.NewBundle("uk")
	require.NoError(t, err)
	renderer, err := view.New(cfg.MediaURL, logger)
	require.NoError(t, err)

	h := handlers.NewHandler(userSvc, artSvc, files, bundle, renderer, logger, cfg)
	return &testEnv{
		router: h.Router, users: ur, articles: ar,
		userSvc: userSvc, artSvc: artSvc, files: files, mediaDir: mediaDir,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) mkUser(t *testing.T, email, password, username string, campus model.CampusType) *model.User {
	t.Helper()
	u, err := e.userSvc.CreateUser(context.Background(), email, password, service.UserFields{
		Username: username, CampusType: campus,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) mkArticle(t *testing.T, owner *model.User, name string, typ model.ArticleType) *model.Article {
	t.Helper()
	a, err := e.artSvc.Create(context.Background(), owner.ID, service.ArticleInput{
		Type: typ, Name: name,
		File: &service.FileInput{Name: name + ".pdf", Size: 4, ContentType: "application/pdf", Body: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	return a
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.NewSession(testSecret, time.Hour, false).SetLoginCookie(rr, userID))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func authCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

// upload: файл для multipart-запроса
type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func formRequest(target string, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
