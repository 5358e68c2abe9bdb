package forms

import (
	"CampusPortal/internal/model"
	"CampusPortal/internal/repo"
	"net/http"
	"net/url"
	"strings"
)

// RegisterForm: форма регистрации.
type RegisterForm struct {
	Username   string  `form:"username" validate:"required,max=40"`
	Email      string  `form:"email" validate:"required,max=100,single_at,email"`
	Password1  string  `form:"password1" validate:"required"`
	Password2  string  `form:"password2" validate:"required,eqfield=Password1"`
	CampusType string  `form:"campus_type" validate:"omitempty,campus_type"`
	Photo      *Upload `form:"photo" validate:"-"`
}

func ParseRegister(r *http.Request) (*RegisterForm, error) {
	photo, err := formFile(r, "photo")
	if err != nil {
		return nil, err
	}
	return &RegisterForm{
		Username:   strings.TrimSpace(r.FormValue("username")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Password1:  r.FormValue("password1"),
		Password2:  r.FormValue("password2"),
		CampusType: r.FormValue("campus_type"),
		Photo:      photo,
	}, nil
}

// Validate проверяет поля и фото. Фото при регистрации обязательно.
func (f *RegisterForm) Validate() *ValidationError {
	errs := validateStruct(f)
	if f.Photo == nil {
		errs.Add("photo", "error.required", "")
	} else {
		PhotoRule.Check(errs, "photo", f.Photo)
	}
	return errs.orNil()
}

// LoginForm: форма входа.
type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
}

func ParseLogin(r *http.Request) *LoginForm {
	return &LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Next:     r.FormValue("next"),
	}
}

func (f *LoginForm) Validate() *ValidationError {
	return validateStruct(f).orNil()
}

// ProfileForm: редактирование своего профиля.
type ProfileForm struct {
	Bio      string  `form:"bio" validate:"-"`
	Password string  `form:"password" validate:"-"`
	Photo    *Upload `form:"photo" validate:"-"`
}

func ParseProfile(r *http.Request) (*ProfileForm, error) {
	photo, err := formFile(r, "photo")
	if err != nil {
		return nil, err
	}
	return &ProfileForm{
		Bio:      r.FormValue("bio"),
		Password: r.FormValue("password"),
		Photo:    photo,
	}, nil
}

// Validate проверяет фото, только если оно передано.
func (f *ProfileForm) Validate() *ValidationError {
	errs := &ValidationError{}
	if f.Photo != nil {
		PhotoRule.Check(errs, "photo", f.Photo)
	}
	return errs.orNil()
}

// ArticleForm: создание и редактирование работы.
type ArticleForm struct {
	Type        string  `form:"type" validate:"required,article_type"`
	Description string  `form:"description" validate:"-"`
	Name        string  `form:"name" validate:"max=256"`
	File        *Upload `form:"file" validate:"-"`
}

func ParseArticle(r *http.Request) (*ArticleForm, error) {
	file, err := formFile(r, "file")
	if err != nil {
		return nil, err
	}
	typ := r.FormValue("type")
	if typ == "" {
		typ = string(model.ArticleLaba)
	}
	return &ArticleForm{
		Type:        typ,
		Description: r.FormValue("description"),
		Name:        strings.TrimSpace(r.FormValue("name")),
		File:        file,
	}, nil
}

// Validate проверяет форму; requireFile: файл обязателен (создание).
func (f *ArticleForm) Validate(requireFile bool) *ValidationError {
	errs := validateStruct(f)
	switch {
	case f.File != nil:
		DocumentRule.Check(errs, "file", f.File)
	case requireFile:
		errs.Add("file", "error.required", "")
	}
	return errs.orNil()
}

// UserFilter: фильтр поиска пользователей. Пустые поля игнорируются.
type UserFilter struct {
	Username   string `form:"username" validate:"-"`
	Email      string `form:"email" validate:"-"`
	CampusType string `form:"campus_type" validate:"omitempty,campus_type"`

	// Bound: в запросе была строка запроса; без неё результатов нет.
	Bound bool `form:"-" validate:"-"`
}

func ParseUserFilter(q url.Values) *UserFilter {
	return &UserFilter{
		Username:   strings.TrimSpace(q.Get("username")),
		Email:      strings.TrimSpace(q.Get("email")),
		CampusType: strings.TrimSpace(q.Get("campus_type")),
		Bound:      len(q) > 0,
	}
}

func (f *UserFilter) Validate() *ValidationError {
	return validateStruct(f).orNil()
}

// Query переводит фильтр в параметры поиска репозитория.
func (f *UserFilter) Query() repo.UserQuery {
	return repo.UserQuery{Username: f.Username, Email: f.Email, CampusType: f.CampusType}
}
