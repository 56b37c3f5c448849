package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultTimeout applies when a Config leaves Timeout unset
const DefaultTimeout = 10 * time.Second

// Backend is a translation service
type Backend interface {
	// Name returns the configured service name
	Name() string

	// Translate translates text into targetLang. sourceLang may be "auto".
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)

	// DetectLanguage returns the ISO code of text. An empty code with a nil
	// error means the service cannot detect languages.
	DetectLanguage(ctx context.Context, text string) (string, error)

	// Enabled reports whether the service is switched on. It never does I/O.
	Enabled() bool

	// SupportedLanguages lists the language codes of the service. The list is
	// advisory and may be empty.
	SupportedLanguages(ctx context.Context) []string
}

// Config holds the settings of one backend. Fields a backend does not use
// are ignored.
type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKey    string        `mapstructure:"api_key"`
	Email     string        `mapstructure:"email"`
	Model     string        `mapstructure:"model"`
	Region    string        `mapstructure:"region"`
	Function  string        `mapstructure:"function"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `mapstructure:"burst"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) endpoint(fallback string) string {
	if c.Endpoint == "" {
		return fallback
	}
	return strings.TrimRight(c.Endpoint, "/")
}

// Error is a transport or parse failure of a backend
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: name, Err: err}
}

// NormalizeCode reduces a language tag such as "en-US" or "EN" to its ISO
// 639 base code. Unparseable input returns "".
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// sourceOrAuto maps an empty source language to "auto"
func sourceOrAuto(sourceLang string) string {
	if sourceLang == "" {
		return "auto"
	}
	return sourceLang
}
