package handlers

import (
	"CampusPortal/internal/forms"
	"CampusPortal/internal/locale"
	"CampusPortal/internal/middleware"
	"CampusPortal/internal/service"
	"CampusPortal/internal/view"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// лимит тела multipart-запроса: самый большой файл и запас на поля
var maxUploadBody = forms.DocumentRule.MaxBytes + 1<<20

// base: общие для страниц рендеринг и обработка ошибок.
type base struct {
	Renderer *view.Renderer
	Bundle   *locale.Bundle
	Logger   *zap.SugaredLogger
}

func (b *base) page(r *http.Request, title string) *view.Page {
	return &view.Page{
		Loc:       b.localizer(r),
		User:      middleware.CurrentUser(r.Context()),
		Title:     title,
		Errors:    map[string]string{},
		Values:    map[string]string{},
		Languages: b.Bundle.Languages(),
	}
}

func (b *base) localizer(r *http.Request) *locale.Localizer {
	if l := locale.FromContext(r.Context()); l != nil {
		return l
	}
	return b.Bundle.Localizer(r.Header.Get("Accept-Language"))
}

func (b *base) render(w http.ResponseWriter, status int, name string, p *view.Page) {
	b.Renderer.Render(w, status, name, p)
}

// withErrors переводит ошибки формы в сообщения страницы.
func (b *base) withErrors(p *view.Page, errs *forms.ValidationError) {
	for field, m := range errs.Fields {
		p.Errors[field] = p.Loc.T(m.ID, "Param=="+m.Param)
	}
	p.Error = p.Loc.T("error.form")
}

func (b *base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, http.StatusNotFound, "not_found", b.page(r, "title.not_found"))
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	b.Logger.Errorw(msg, "path", r.URL.Path, "error", err)
	b.render(w, http.StatusInternalServerError, "error", b.page(r, "title.error"))
}

// parseMultipart разбирает multipart-форму с ограничением размера.
// Слишком большое тело превращается в ошибку поля field по правилу rule.
func (b *base) parseMultipart(w http.ResponseWriter, r *http.Request, field string, rule forms.FileRule) (*forms.ValidationError, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(10 << 20)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		errs := &forms.ValidationError{}
		errs.Add(field, "error.file_size", rule.LimitMB())
		return errs, nil
	}
	return nil, err
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func fileInput(u *forms.Upload) *service.FileInput {
	if u == nil {
		return nil
	}
	return &service.FileInput{Name: u.Name, Size: u.Size, ContentType: u.ContentType, Body: u.File}
}
