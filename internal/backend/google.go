package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DefaultGoogleEndpoint is the unofficial free Google Translate endpoint
const DefaultGoogleEndpoint = "https://translate.googleapis.com"

var googleLanguages = []string{
	"af", "sq", "am", "ar", "hy", "az", "eu", "be", "bn", "bs",
	"bg", "ca", "ceb", "ny", "zh", "co", "hr", "cs", "da", "nl",
	"en", "eo", "et", "tl", "fi", "fr", "fy", "gl", "ka", "de",
	"el", "gu", "ht", "ha", "haw", "iw", "hi", "hmn", "hu", "is",
	"ig", "id", "ga", "it", "ja", "jw", "kn", "kk", "km", "ko",
	"ku", "ky", "lo", "la", "lv", "lt", "lb", "mk", "mg", "ms",
	"ml", "mt", "mi", "mr", "mn", "my", "ne", "no", "ps", "fa",
	"pl", "pt", "pa", "ro", "ru", "sm", "gd", "sr", "st", "sn",
	"sd", "si", "sk", "sl", "so", "es", "su", "sw", "sv", "tg",
	"ta", "te", "th", "tr", "uk", "ur", "uz", "vi", "cy", "xh",
	"yi", "yo", "zu",
}

// Google uses the gtx client endpoint of Google Translate
type Google struct {
	*httpService
}

// NewGoogle creates a Google Translate backend
func NewGoogle(name string, cfg Config) (Backend, error) {
	return &Google{httpService: newHTTPService(name, cfg, DefaultGoogleEndpoint)}, nil
}

// single calls /translate_a/single. The answer is a nested array: index 0
// holds the translated segments, index 2 the detected source language.
func (g *Google) single(ctx context.Context, text, targetLang, sourceLang string) ([]any, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", sourceOrAuto(sourceLang))
	query.Set("tl", targetLang)
	query.Set("dt", "t")
	query.Set("q", text)

	var resp []any
	if err := g.get(ctx, "/translate_a/single", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Translate joins all translated segments of the response
func (g *Google) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	resp, err := g.single(ctx, text, targetLang, sourceLang)
	if err != nil {
		return "", wrap(g.name, err)
	}

	if len(resp) == 0 {
		return "", wrap(g.name, fmt.Errorf("unexpected response format"))
	}
	segments, ok := resp[0].([]any)
	if !ok {
		return "", wrap(g.name, fmt.Errorf("unexpected response format"))
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

// DetectLanguage reads the detected source language of an auto translation
func (g *Google) DetectLanguage(ctx context.Context, text string) (string, error) {
	resp, err := g.single(ctx, text, "en", "auto")
	if err != nil {
		return "", wrap(g.name, err)
	}
	if len(resp) < 3 {
		return "", nil
	}
	lang, _ := resp[2].(string)
	return lang, nil
}

// SupportedLanguages returns the static Google language list
func (g *Google) SupportedLanguages(ctx context.Context) []string {
	return append([]string(nil), googleLanguages...)
}
