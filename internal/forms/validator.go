package forms

import (
	"CampusPortal/internal/model"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Message: ключ локализованного сообщения об ошибке и его параметр.
type Message struct {
	ID    string
	Param string
}

// ValidationError содержит ошибки формы по полям: "поле" -> сообщение.
type ValidationError struct {
	Fields map[string]Message
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("field '%s': %s", k, e.Fields[k].ID))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add добавляет ошибку поля, если для него ещё нет ошибки.
func (e *ValidationError) Add(field, id, param string) {
	if e.Fields == nil {
		e.Fields = map[string]Message{}
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = Message{ID: id, Param: param}
}

func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Fields[field]
	return ok
}

// orNil возвращает nil, если ошибок нет.
func (e *ValidationError) orNil() *ValidationError {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// имена полей берём из тега form, как в HTML
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	mustRegister("single_at", func(fl validator.FieldLevel) bool {
		return strings.Count(fl.Field().String(), "@") == 1
	})
	mustRegister("campus_type", func(fl validator.FieldLevel) bool {
		return model.CampusType(fl.Field().String()).Valid()
	})
	mustRegister("article_type", func(fl validator.FieldLevel) bool {
		return model.ArticleType(fl.Field().String()).Valid()
	})
	return v
}

// messageIDs переопределяет ключи сообщений для отдельных тегов.
var messageIDs = map[string]string{
	"eqfield": "error.password_mismatch",
}

// validateStruct проверяет структуру и собирает ошибки по полям.
func validateStruct(s any) *ValidationError {
	out := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out.Add("__all__", "error.invalid", "")
		return out
	}
	for _, fe := range verrs {
		id, ok := messageIDs[fe.Tag()]
		if !ok {
			id = "error." + fe.Tag()
		}
		param := fe.Param()
		if fe.Tag() == "eqfield" {
			param = ""
		}
		out.Add(fe.Field(), id, param)
	}
	return out
}
