package handlers

import (
	"CampusPortal/internal/config"
	"CampusPortal/internal/locale"
	"CampusPortal/internal/middleware"
	"CampusPortal/internal/service"
	"CampusPortal/internal/storage"
	"CampusPortal/internal/view"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	articleService *service.ArticleService,
	files storage.Storage,
	bundle *locale.Bundle,
	renderer *view.Renderer,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	session := middleware.NewSession(config.AuthSecret, config.SessionTTL, config.EnableHTTPS)

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging(logger))
	r.Use(session.WithAuth)
	r.Use(session.WithCurrentUser(userService.GetByID, logger))
	r.Use(bundle.Middleware)

	pages := &base{Renderer: renderer, Bundle: bundle, Logger: logger}

	// Handlers
	authHandler := NewAuthHandler(userService, articleService, pages, session)
	articleHandler := NewArticleHandler(articleService, pages)
	mediaHandler := NewMediaHandler(files, bundle)

	r.NotFound(pages.NotFound)

	// Auth routes
	r.Get("/register/", authHandler.RegisterPage)
	r.Post("/register/", authHandler.Register)
	r.Get("/login/", authHandler.LoginPage)
	r.Post("/login/", authHandler.Login)
	r.Get("/profile/search", authHandler.Search)
	r.Get("/profile/{user_id}", authHandler.Profile)

	// Articles
	r.Get("/", articleHandler.Feed)

	// Media and language
	r.Get(strings.TrimSuffix(config.MediaURL, "/")+"/*", mediaHandler.Serve)
	r.Get("/lang/{code}", mediaHandler.SetLanguage)

	// Login required
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)

		r.Get("/logout/", authHandler.Logout)
		r.Get("/profile/", authHandler.MyProfilePage)
		r.Post("/profile/", authHandler.MyProfile)

		r.Get("/my_articles", articleHandler.MyArticlesPage)
		r.Post("/my_articles", articleHandler.CreateArticle)
		r.Get("/my_articles/{article_id}", articleHandler.EditPage)
		r.Post("/my_articles/{article_id}", articleHandler.Edit)
		r.Get("/my_articles/delete/{article_id}", articleHandler.Delete)
	})

	return &Handler{Router: r}
}
