package forms

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// Upload: файл из multipart-формы.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	File        multipart.File
}

// Close закрывает файл, если он открыт.
func (u *Upload) Close() error {
	if u == nil || u.File == nil {
		return nil
	}
	return u.File.Close()
}

// Ext: расширение файла в нижнем регистре без точки.
func (u *Upload) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Name)), ".")
}

// FromFileHeader открывает файл из заголовка multipart.
func FromFileHeader(fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Upload{Name: fh.Filename, Size: fh.Size, ContentType: ct, File: f}, nil
}

// formFile возвращает загруженный файл или nil, если поле пустое.
func formFile(r *http.Request, field string) (*Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	_, fh, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Filename == "" {
		return nil, nil
	}
	return FromFileHeader(fh)
}

// FileRule ограничивает расширение и размер загрузки.
type FileRule struct {
	Extensions []string
	MaxBytes   int64
}

var (
	// PhotoRule: фото профиля: jpg, jpeg, png до 2.5 МБ.
	PhotoRule = FileRule{Extensions: []string{"jpg", "jpeg", "png"}, MaxBytes: 2.5 * 1024 * 1024}
	// DocumentRule: файл работы: pdf, docx, doc до 10 МБ.
	DocumentRule = FileRule{Extensions: []string{"pdf", "docx", "doc"}, MaxBytes: 10 * 1024 * 1024}
)

// Check добавляет в errs ошибку поля, если файл не проходит правило.
func (rule FileRule) Check(errs *ValidationError, field string, u *Upload) {
	ext := u.Ext()
	allowed := false
	for _, e := range rule.Extensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		errs.Add(field, "error.file_extension", strings.Join(rule.Extensions, ", "))
		return
	}
	if u.Size > rule.MaxBytes {
		errs.Add(field, "error.file_size", rule.LimitMB())
	}
}

// LimitMB: лимит размера в мегабайтах для сообщений ("2.5", "10").
func (rule FileRule) LimitMB() string {
	return strconv.FormatFloat(float64(rule.MaxBytes)/(1024*1024), 'f', -1, 64)
}
