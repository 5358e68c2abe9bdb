package locale

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// CookieName: cookie с выбранным языком интерфейса.
const CookieName = "lang"

//go:embed translation/*.toml
var translationFS embed.FS

type ctxKey struct{}

// Bundle хранит каталоги сообщений всех языков.
type Bundle struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag
}

// NewBundle загружает встроенные каталоги. defaultLang используется,
// когда ни cookie, ни Accept-Language не дают известного языка.
func NewBundle(defaultLang string) (*Bundle, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse default language %q: %w", defaultLang, err)
	}
	b := i18n.NewBundle(def)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err = fs.WalkDir(translationFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := translationFS.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = b.ParseMessageFileBytes(data, path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	// язык по умолчанию первым: на него matcher откатывается
	tags := []language.Tag{def}
	for _, t := range b.LanguageTags() {
		if t != def {
			tags = append(tags, t)
		}
	}
	return &Bundle{bundle: b, matcher: language.NewMatcher(tags), tags: tags}, nil
}

// Languages возвращает коды доступных языков, язык по умолчанию первым.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.tags))
	for _, t := range b.tags {
		out = append(out, t.String())
	}
	return out
}

// Supported сообщает, есть ли каталог для языка.
func (b *Bundle) Supported(lang string) bool {
	for _, t := range b.tags {
		if t.String() == lang {
			return true
		}
	}
	return false
}

// Localizer подбирает язык по списку предпочтений (значения cookie или Accept-Language).
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	var wanted []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	_, idx, conf := b.matcher.Match(wanted...)
	if conf == language.No {
		// ни один из запрошенных языков не поддерживается
		idx = 0
	}
	tag := b.tags[idx]
	return &Localizer{
		loc:  i18n.NewLocalizer(b.bundle, tag.String()),
		lang: tag.String(),
	}
}

// Middleware кладёт Localizer запроса в контекст.
func (b *Bundle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lang string
		if c, err := r.Cookie(CookieName); err == nil {
			lang = c.Value
		}
		loc := b.Localizer(lang, r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
	})
}

func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext возвращает Localizer запроса или nil.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(ctxKey{}).(*Localizer)
	return l
}

// Localizer переводит сообщения на выбранный язык.
type Localizer struct {
	loc  *i18n.Localizer
	lang string
}

func (l *Localizer) Lang() string {
	if l == nil {
		return ""
	}
	return l.lang
}

// T переводит сообщение. Параметры передаются строками "имя==значение".
// Для неизвестного ключа возвращается сам ключ.
func (l *Localizer) T(id string, params ...string) string {
	if l == nil {
		return id
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: templateData(params),
	})
	if err != nil || msg == "" {
		return id
	}
	return msg
}

func templateData(params []string) map[string]any {
	data := make(map[string]any, len(params))
	for _, p := range params {
		parts := strings.SplitN(p, "==", 2)
		if len(parts) != 2 {
			continue
		}
		data[parts[0]] = parts[1]
	}
	return data
}
