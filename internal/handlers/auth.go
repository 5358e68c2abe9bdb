package handlers

import (
	"CampusPortal/internal/forms"
	"CampusPortal/internal/middleware"
	"CampusPortal/internal/model"
	"CampusPortal/internal/service"
	"errors"
	"net/http"
	"strings"
)

// AuthHandler: регистрация, вход, профили и поиск пользователей.
type AuthHandler struct {
	*base
	UserService    *service.UserService
	ArticleService *service.ArticleService
	Session        *middleware.Session
}

// NewAuthHandler создаёт хендлер пользователей
func NewAuthHandler(userService *service.UserService, articleService *service.ArticleService, b *base, session *middleware.Session) *AuthHandler {
	return &AuthHandler{base: b, UserService: userService, ArticleService: articleService, Session: session}
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "title.register")
	p.Values["campus_type"] = string(model.CampusStudent)
	h.render(w, http.StatusOK, "register", p)
}

// Register регистрация пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "title.register")

	tooLarge, err := h.parseMultipart(w, r, "photo", forms.PhotoRule)
	if err != nil {
		h.Logger.Warnw("Register: invalid multipart form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if tooLarge != nil {
		h.withErrors(p, tooLarge)
		h.render(w, http.StatusOK, "register", p)
		return
	}

	form, err := forms.ParseRegister(r)
	if err != nil {
		h.serverError(w, r, "Register: failed to read photo", err)
		return
	}
	defer form.Photo.Close()
	form.Email = service.NormalizeEmail(form.Email)

	p.Values["username"] = form.Username
	p.Values["email"] = form.Email
	p.Values["campus_type"] = form.CampusType

	errs := form.Validate()
	if !errs.Has("email") {
		taken, err := h.UserService.EmailTaken(r.Context(), form.Email)
		if err != nil {
			h.serverError(w, r, "Register: email lookup failed", err)
			return
		}
		if taken {
			if errs == nil {
				errs = &forms.ValidationError{}
			}
			errs.Add("email", "error.email_taken", "")
		}
	}
	if errs != nil {
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "register", p)
		return
	}

	user, err := h.UserService.Create(r.Context(), service.NewUser{
		Email:      form.Email,
		Password1:  form.Password1,
		Password2:  form.Password2,
		Username:   form.Username,
		CampusType: model.CampusType(form.CampusType),
		Photo:      fileInput(form.Photo),
	})
	if err != nil {
		h.serverError(w, r, "Register: create user failed", err)
		return
	}
	if user == nil {
		// email заняли между проверкой и созданием
		errs = &forms.ValidationError{}
		errs.Add("email", "error.email_taken", "")
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "register", p)
		return
	}

	if err := h.Session.SetLoginCookie(w, user.ID); err != nil {
		h.serverError(w, r, "Register: failed to set cookie", err)
		return
	}
	h.Logger.Infow("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "title.login")
	p.Next = r.URL.Query().Get("next")
	h.render(w, http.StatusOK, "login", p)
}

// Login вход по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseLogin(r)
	p := h.page(r, "title.login")
	p.Next = form.Next
	p.Values["email"] = form.Email

	if errs := form.Validate(); errs != nil {
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "login", p)
		return
	}

	user, err := h.UserService.Authenticate(r.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.Logger.Warnw("Login: invalid credentials", "email", form.Email)
		p.Error = p.Loc.T("error.invalid_credentials")
		h.render(w, http.StatusOK, "login", p)
		return
	}
	if err != nil {
		h.serverError(w, r, "Login: authenticate failed", err)
		return
	}

	if err := h.Session.SetLoginCookie(w, user.ID); err != nil {
		h.serverError(w, r, "Login: failed to set cookie", err)
		return
	}
	http.Redirect(w, r, safeNext(form.Next), http.StatusFound)
}

// safeNext пропускает только локальные пути.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.ClearLoginCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) MyProfilePage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "title.my_profile")
	p.Values["bio"] = p.User.BioText()
	h.render(w, http.StatusOK, "my_profile", p)
}

// MyProfile проверяет форму профиля, сохраняется только bio.
func (h *AuthHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "title.my_profile")

	tooLarge, err := h.parseMultipart(w, r, "photo", forms.PhotoRule)
	if err != nil {
		h.Logger.Warnw("MyProfile: invalid multipart form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if tooLarge != nil {
		p.Values["bio"] = p.User.BioText()
		h.withErrors(p, tooLarge)
		h.render(w, http.StatusOK, "my_profile", p)
		return
	}

	form, err := forms.ParseProfile(r)
	if err != nil {
		h.serverError(w, r, "MyProfile: failed to read photo", err)
		return
	}
	defer form.Photo.Close()
	p.Values["bio"] = form.Bio

	if errs := form.Validate(); errs != nil {
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "my_profile", p)
		return
	}

	if err := h.UserService.Update(r.Context(), p.User.Email, service.UserUpdate{Bio: &form.Bio}); err != nil {
		h.serverError(w, r, "MyProfile: update failed", err)
		return
	}
	http.Redirect(w, r, "/profile/", http.StatusFound)
}

// Profile публичный профиль пользователя с его работами
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "user_id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	user, err := h.UserService.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Profile: user lookup failed", err)
		return
	}
	if user == nil {
		h.NotFound(w, r)
		return
	}
	articles, err := h.ArticleService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, "Profile: list articles failed", err)
		return
	}

	p := h.page(r, "title.profile")
	p.Profile = user
	p.Articles = articles
	h.render(w, http.StatusOK, "profile", p)
}

// Search поиск пользователей. Без строки запроса выводится только форма.
func (h *AuthHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := forms.ParseUserFilter(r.URL.Query())
	p := h.page(r, "title.search")
	p.Values["username"] = filter.Username
	p.Values["email"] = filter.Email
	p.Values["campus_type"] = filter.CampusType

	if !filter.Bound {
		h.render(w, http.StatusOK, "search_users", p)
		return
	}
	if errs := filter.Validate(); errs != nil {
		h.withErrors(p, errs)
		h.render(w, http.StatusOK, "search_users", p)
		return
	}

	users, err := h.UserService.Search(r.Context(), filter.Query())
	if err != nil {
		h.serverError(w, r, "Search: query failed", err)
		return
	}
	p.Users = users
	p.Searched = true
	h.render(w, http.StatusOK, "search_users", p)
}
