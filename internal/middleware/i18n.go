package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// Locales the service has user-visible strings for. The first entry is the
// ultimate fallback.
var supported = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// CountryLookup resolves ISO country codes for an IP address. It is
// optional; a nil lookup skips country-based locale hints.
type CountryLookup func(ip string) (string, error)

// I18N stores the negotiated locale for user-visible messages in the
// request context. Explicit X-Locale wins, then Accept-Language, then the
// country of the caller's IP, then the configured default.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, lookup)
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the negotiated locale, defaulting to "en".
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok && v != "" {
		return v
	}
	return "en"
}

func detectLocale(r *http.Request, fallback string, lookup CountryLookup) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return matchLocale(v)
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		if tags, _, err := language.ParseAcceptLanguage(v); err == nil && len(tags) > 0 {
			tag, _, conf := supported.Match(tags...)
			if conf > language.No {
				return baseLocale(tag)
			}
		}
	}
	if lookup != nil {
		if country, err := lookup(clientIPForRateLimit(r)); err == nil && spanishSpeaking(country) {
			return "es"
		}
	}
	if fallback != "" {
		return matchLocale(fallback)
	}
	return "en"
}

func matchLocale(v string) string {
	tag, err := language.Parse(strings.TrimSpace(v))
	if err != nil {
		return "en"
	}
	matched, _, _ := supported.Match(tag)
	return baseLocale(matched)
}

func baseLocale(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

func spanishSpeaking(country string) bool {
	switch strings.ToUpper(country) {
	case "ES", "MX", "AR", "CO", "CL", "PE", "VE", "EC", "GT", "CU", "BO", "DO", "HN", "PY", "SV", "NI", "CR", "PA", "UY":
		return true
	}
	return false
}
