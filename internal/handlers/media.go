package handlers

import (
	"CampusPortal/internal/locale"
	"CampusPortal/internal/storage"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
)

// MediaHandler отдаёт загруженные файлы и переключает язык интерфейса.
type MediaHandler struct {
	Files  storage.Storage
	Bundle *locale.Bundle
}

func NewMediaHandler(files storage.Storage, bundle *locale.Bundle) *MediaHandler {
	return &MediaHandler{Files: files, Bundle: bundle}
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	h.Files.Serve(w, r, chi.URLParam(r, "*"))
}

// SetLanguage запоминает язык в cookie и возвращает на предыдущую страницу.
func (h *MediaHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if h.Bundle.Supported(code) {
		http.SetCookie(w, &http.Cookie{
			Name:     locale.CookieName,
			Value:    code,
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			SameSite: http.SameSiteLaxMode,
		})
	}

	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = safeNext(ref.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusFound)
}
