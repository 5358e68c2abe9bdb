package view

import (
	"CampusPortal/internal/locale"
	"CampusPortal/internal/model"
	"CampusPortal/internal/service"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsGlob = "templates/partial_*.html"
)

// Page: данные страницы. Заполняются только нужные шаблону поля.
type Page struct {
	Loc   *locale.Localizer
	User  *model.User // текущий пользователь, nil для гостя
	Title string      // ключ сообщения

	Error  string            // общая ошибка формы
	Errors map[string]string // ошибки по полям, уже переведённые
	Values map[string]string // значения полей для повторного вывода
	Next   string

	Profile  *model.User
	Users    []model.User
	Searched bool
	Article  *model.Article
	Articles []model.Article
	Counts   []service.TypeCount

	Languages []string
}

// Value возвращает введённое значение поля.
func (p *Page) Value(field string) string {
	return p.Values[field]
}

// Renderer рендерит страницы из встроенных шаблонов.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.SugaredLogger
}

// New разбирает все страницы вместе с общим layout.
// mediaURL: префикс для ссылок на загруженные файлы.
func New(mediaURL string, logger *zap.SugaredLogger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	funcs := template.FuncMap{
		"media":        mediaFunc(mediaURL),
		"date":         func(t time.Time) string { return t.Local().Format("02.01.2006 15:04") },
		"campusTypes":  model.CampusTypes,
		"articleTypes": model.ArticleTypes,
		"campusLabel":  func(c model.CampusType) string { return "campus." + string(c) },
		"articleLabel": func(a model.ArticleType) string { return "article." + string(a) },
	}

	// общий набор: layout и partial_*.html, страницы добавляются к его копии
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layoutFile, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		base := path.Base(file)
		if file == layoutFile || strings.HasPrefix(base, "partial_") {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(base, ".html")] = t
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

func mediaFunc(mediaURL string) func(string) string {
	prefix := strings.TrimSuffix(mediaURL, "/")
	return func(key string) string {
		if key == "" {
			return ""
		}
		return prefix + "/" + key
	}
}

// Render выводит страницу name со статусом status.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, p *Page) {
	t, ok := rd.pages[name]
	if !ok {
		rd.logger.Errorw("template not found", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if p.Errors == nil {
		p.Errors = map[string]string{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		rd.logger.Errorw("render failed", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
