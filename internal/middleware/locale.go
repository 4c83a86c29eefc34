package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type regionContextKey struct{}

var (
	LocaleKey = localeContextKey{}
	RegionKey = regionContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

var supportedLocales = []language.Tag{
	language.English, // default
	language.Spanish,
	language.German,
	language.French,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// euCountries drives provider-region hinting: EU shoppers are routed to
// the provider's European fulfillment facilities.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// Locale attaches the shopper's locale and fulfillment region to the
// request context. The locale comes from X-Locale or Accept-Language via
// the language matcher; the region falls back to a GeoIP country lookup.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			region := detectRegion(r, lookup)

			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if region != "" {
				ctx = context.WithValue(ctx, RegionKey, region)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		if tag, err := language.Parse(v); err == nil {
			matched, _, _ := localeMatcher.Match(tag)
			base, _ := matched.Base()
			return base.String()
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			matched, _, _ := localeMatcher.Match(tags...)
			base, _ := matched.Base()
			return base.String()
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func detectRegion(r *http.Request, lookup CountryLookup) string {
	if lookup == nil {
		return ""
	}
	country, err := lookup(ClientIP(r))
	if err != nil || country == "" {
		return ""
	}
	country = strings.ToUpper(country)
	if _, ok := euCountries[country]; ok {
		return "EU"
	}
	return "US"
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the locale stored in the request context.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// RegionFromContext returns the fulfillment region stored in the request
// context, empty when unknown.
func RegionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RegionKey).(string); ok {
		return v
	}
	return ""
}
