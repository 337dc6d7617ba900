package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/oneacrefund/fieldops-console/pkg/intl"
)

// Application is the slice of the app the localizer middleware needs.
type Application interface {
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
}

// ProvideLocalizer negotiates the response language and stores a
// localizer in the context. An explicit lang query parameter wins,
// then Accept-Language, then English.
func ProvideLocalizer(app Application) mux.MiddlewareFunc {
	bundle := app.Bundle()

	var supported []language.Tag
	for _, lang := range intl.GetSupportedLanguages(app.GetSupportedLanguages()) {
		supported = append(supported, lang.Tag)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := negotiateLocale(r, supported)
			ctx := intl.WithLocalizer(
				r.Context(),
				i18n.NewLocalizer(bundle, locale.String()),
			)
			ctx = intl.WithLocale(ctx, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func negotiateLocale(r *http.Request, supported []language.Tag) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			return closestSupported(supported, []language.Tag{tag})
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		tags = nil
	}
	return closestSupported(supported, tags)
}

func closestSupported(supported, candidates []language.Tag) language.Tag {
	if len(supported) == 0 {
		return language.English
	}
	if len(candidates) == 0 {
		candidates = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(supported)
	_, idx, _ := matcher.Match(candidates...)
	return supported[idx]
}
