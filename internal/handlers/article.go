package handlers

import (
	"CampusPortal/internal/forms"
	"CampusPortal/internal/middleware"
	"CampusPortal/internal/model"
	"CampusPortal/internal/service"
	"CampusPortal/internal/view"
	"net/http"
)

// ArticleHandler: лента и работы текущего пользователя.
type ArticleHandler struct {
	*base
	ArticleService *service.ArticleService
}

// NewArticleHandler создаёт хендлер работ
func NewArticleHandler(articleService *service.ArticleService, b *base) *ArticleHandler {
	return &ArticleHandler{base: b, ArticleService: articleService}
}

// Feed все работы, новые первыми
func (h *ArticleHandler) Feed(w http.ResponseWriter, r *http.Request) {
	articles, err := h.ArticleService.Feed(r.Context())
	if err != nil {
		h.serverError(w, r, "Feed: list articles failed", err)
		return
	}
	p := h.page(r, "title.feed")
	p.Articles = articles
	h.render(w, http.StatusOK, "main", p)
}

// myArticlesPage собирает страницу "мои работы": список, счётчики по типам и форма.
func (h *ArticleHandler) myArticlesPage(r *http.Request) (*view.Page, error) {
	user := middleware.CurrentUser(r.Context())
	articles, err := h.ArticleService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	counts, err := h.ArticleService.TypeCounts(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	p := h.page(r, "title.my_articles")
	p.Articles = articles
	p.Counts = counts
	p.Values["type"] = string(model.ArticleLaba)
	return p, nil
}

func (h *ArticleHandler) MyArticlesPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.myArticlesPage(r)
	if err != nil {
		h.serverError(w, r, "MyArticles: load failed", err)
		return
	}
	h.render(w, http.StatusOK, "articles_by_user", p)
}

// CreateArticle загрузка новой работы
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	tooLarge, err := h.parseMultipart(w, r, "file", forms.DocumentRule)
	if err != nil {
		h.Logger.Warnw("CreateArticle: invalid multipart form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var form *forms.ArticleForm
	errs := tooLarge
	if errs == nil {
		form, err = forms.ParseArticle(r)
		if err != nil {
			h.serverError(w, r, "CreateArticle: failed to read file", err)
			return
		}
		defer form.File.Close()
		errs = form.Validate(true)
	}

	if errs != nil {
		p, err := h.myArticlesPage(r)
		if err != nil {
			h.serverError(w, r, "CreateArticle: load failed", err)
			return
		}
		if form != nil {
			p.Values["type"] = form.Type
			p.Values["description"] = form.Description
			p.Values["name"] = form.Name
		}
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "articles_by_user", p)
		return
	}

	a, err := h.ArticleService.Create(r.Context(), user.ID, service.ArticleInput{
		Type:        model.ArticleType(form.Type),
		Description: form.Description,
		Name:        form.Name,
		File:        fileInput(form.File),
	})
	if err != nil {
		h.serverError(w, r, "CreateArticle: create failed", err)
		return
	}
	h.Logger.Infow("article created", "user_id", user.ID, "article_id", a.ID)
	http.Redirect(w, r, "/my_articles", http.StatusFound)
}

// owned ищет работу текущего пользователя по id из URL; nil: нет или чужая.
func (h *ArticleHandler) owned(r *http.Request) (*model.Article, error) {
	id, ok := urlID(r, "article_id")
	if !ok {
		return nil, nil
	}
	user := middleware.CurrentUser(r.Context())
	return h.ArticleService.GetOwned(r.Context(), user.ID, id)
}

// EditPage форма редактирования. Для чужой или несуществующей работы форма пустая.
func (h *ArticleHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	a, err := h.owned(r)
	if err != nil {
		h.serverError(w, r, "EditArticle: lookup failed", err)
		return
	}
	p := h.page(r, "title.edit_article")
	p.Article = a
	if a != nil {
		p.Values["type"] = string(a.Type)
		p.Values["description"] = a.Description
		p.Values["name"] = a.Name
	} else {
		p.Values["type"] = string(model.ArticleLaba)
	}
	h.render(w, http.StatusOK, "edit_article", p)
}

// Edit сохраняет изменения. Чужая или несуществующая работа не меняется.
func (h *ArticleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	a, err := h.owned(r)
	if err != nil {
		h.serverError(w, r, "EditArticle: lookup failed", err)
		return
	}
	if a == nil {
		http.Redirect(w, r, "/my_articles", http.StatusFound)
		return
	}

	p := h.page(r, "title.edit_article")
	p.Article = a
	p.Values["type"] = string(a.Type)
	p.Values["description"] = a.Description
	p.Values["name"] = a.Name

	tooLarge, err := h.parseMultipart(w, r, "file", forms.DocumentRule)
	if err != nil {
		h.Logger.Warnw("EditArticle: invalid multipart form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if tooLarge != nil {
		h.withErrors(p, tooLarge)
		h.render(w, http.StatusOK, "edit_article", p)
		return
	}

	form, err := forms.ParseArticle(r)
	if err != nil {
		h.serverError(w, r, "EditArticle: failed to read file", err)
		return
	}
	defer form.File.Close()

	if errs := form.Validate(false); errs != nil {
		p.Values["type"] = form.Type
		p.Values["description"] = form.Description
		p.Values["name"] = form.Name
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "edit_article", p)
		return
	}

	err = h.ArticleService.Update(r.Context(), a, service.ArticleInput{
		Type:        model.ArticleType(form.Type),
		Description: form.Description,
		Name:        form.Name,
		File:        fileInput(form.File),
	})
	if err != nil {
		h.serverError(w, r, "EditArticle: update failed", err)
		return
	}
	http.Redirect(w, r, "/my_articles", http.StatusFound)
}

// Delete удаляет свою работу; в любом случае возвращает к списку.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if id, ok := urlID(r, "article_id"); ok {
		user := middleware.CurrentUser(r.Context())
		if _, err := h.ArticleService.Delete(r.Context(), user.ID, id); err != nil {
			h.Logger.Errorw("DeleteArticle: delete failed", "user_id", user.ID, "article_id", id, "error", err)
		}
	}
	http.Redirect(w, r, "/my_articles", http.StatusFound)
}
