// Package locale detects the preferred language of an HTTP request.
//
// Detection order is the query parameter, then the locale cookie, then the
// Accept-Language header matched against the supported locales. The result
// is stored in the request context.
package locale

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type contextKey string

const localeContextKey contextKey = "lingochain_locale"

// Config controls locale detection
type Config struct {
	QueryParam string   `mapstructure:"query_param"`
	CookieName string   `mapstructure:"cookie_name"`
	Supported  []string `mapstructure:"supported"`
	SetCookie  bool     `mapstructure:"set_cookie"`
}

// DefaultConfig returns the detection defaults
func DefaultConfig() Config {
	return Config{
		QueryParam: "lang",
		CookieName: "locale",
		Supported:  []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh"},
	}
}

// Detector resolves request locales
type Detector struct {
	cfg       Config
	supported []string
	matcher   language.Matcher
}

// NewDetector creates a detector. Unparseable supported locales are skipped.
func NewDetector(cfg Config) *Detector {
	if cfg.QueryParam == "" {
		cfg.QueryParam = "lang"
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "locale"
	}

	d := &Detector{cfg: cfg}
	var tags []language.Tag
	for _, code := range cfg.Supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		d.supported = append(d.supported, baseCode(tag))
	}
	if len(tags) > 0 {
		d.matcher = language.NewMatcher(tags)
	}
	return d
}

// Detect returns the locale of r, or "" when none could be determined
func (d *Detector) Detect(r *http.Request) string {
	if code := normalize(r.URL.Query().Get(d.cfg.QueryParam)); code != "" {
		return code
	}

	if cookie, err := r.Cookie(d.cfg.CookieName); err == nil {
		if code := normalize(cookie.Value); code != "" {
			return code
		}
	}

	return d.fromAcceptLanguage(r.Header.Get("Accept-Language"))
}

func (d *Detector) fromAcceptLanguage(header string) string {
	if d.matcher == nil || header == "" {
		return ""
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}

	_, index, confidence := d.matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	return d.supported[index]
}

// Middleware stores the detected locale in the request context
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := d.Detect(r)
		if code != "" {
			if d.cfg.SetCookie {
				http.SetCookie(w, &http.Cookie{
					Name:   d.cfg.CookieName,
					Value:  code,
					MaxAge: 365 * 24 * 60 * 60,
					Path:   "/",
				})
			}
			r = r.WithContext(WithLocale(r.Context(), code))
		}
		next.ServeHTTP(w, r)
	})
}

// WithLocale returns a copy of ctx carrying code
func WithLocale(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, localeContextKey, code)
}

// FromContext returns the locale stored by the middleware, or "" if none
func FromContext(ctx context.Context) string {
	if code, ok := ctx.Value(localeContextKey).(string); ok {
		return code
	}
	return ""
}

func normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return baseCode(tag)
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
