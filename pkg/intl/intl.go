package intl

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type SupportedLanguage struct {
	Code        string
	VerboseName string
	Tag         language.Tag
}

var (
	// allSupportedLanguages is the master list of languages the console ships
	// translations for. The program operates in anglophone and francophone
	// countries plus Swahili-speaking regions.
	allSupportedLanguages = []SupportedLanguage{
		{
			Code:        "en",
			VerboseName: "English",
			Tag:         language.English,
		},
		{
			Code:        "fr",
			VerboseName: "Français",
			Tag:         language.French,
		},
		{
			Code:        "sw",
			VerboseName: "Kiswahili",
			Tag:         language.Swahili,
		},
	}

	// SupportedLanguages is the default list (all languages supported by the runtime).
	SupportedLanguages = allSupportedLanguages
)

// GetSupportedLanguages returns a filtered list of supported languages based on the whitelist.
// If whitelist is nil or empty, returns all supported languages.
func GetSupportedLanguages(whitelist []string) []SupportedLanguage {
	if len(whitelist) == 0 {
		return allSupportedLanguages
	}

	whitelistMap := make(map[string]bool)
	for _, code := range whitelist {
		whitelistMap[code] = true
	}

	filtered := make([]SupportedLanguage, 0, len(whitelist))
	for _, lang := range allSupportedLanguages {
		if whitelistMap[lang.Code] {
			filtered = append(filtered, lang)
		}
	}

	return filtered
}

type contextKey string

const (
	localizerKey contextKey = "localizer"
	localeKey    contextKey = "locale"
)

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey, l)
}

// UseLocalizer returns the request localizer. The second return value is
// false when no localizer middleware ran for this request.
func UseLocalizer(ctx context.Context) (*i18n.Localizer, bool) {
	l, ok := ctx.Value(localizerKey).(*i18n.Localizer)
	return l, ok
}

func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey, tag)
}

func UseLocale(ctx context.Context, fallback language.Tag) language.Tag {
	tag, ok := ctx.Value(localeKey).(language.Tag)
	if !ok {
		return fallback
	}
	return tag
}

// MustT localizes messageID, falling back to defaultMessage when the
// localizer is absent or the key is missing from the bundle.
func MustT(ctx context.Context, messageID, defaultMessage string) string {
	l, ok := UseLocalizer(ctx)
	if !ok {
		return defaultMessage
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
		DefaultMessage: &i18n.Message{
			ID:    messageID,
			Other: defaultMessage,
		},
	})
	if err != nil {
		return defaultMessage
	}
	return msg
}
