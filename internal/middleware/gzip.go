package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// сжимаются только текстовые ответы; загруженные файлы отдаются как есть
var compressor = middleware.Compress(5, "text/html", "text/css", "text/plain")

// WithGzip сжимает ответ, если клиент принимает gzip.
func WithGzip(next http.Handler) http.Handler {
	return compressor(next)
}
