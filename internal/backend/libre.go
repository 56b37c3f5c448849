package backend

import (
	"context"
	"fmt"
)

// DefaultLibreEndpoint is the public LibreTranslate instance
const DefaultLibreEndpoint = "https://libretranslate.com"

// Libre talks to a LibreTranslate server
type Libre struct {
	*httpService
}

// NewLibre creates a LibreTranslate backend
func NewLibre(name string, cfg Config) (Backend, error) {
	return &Libre{httpService: newHTTPService(name, cfg, DefaultLibreEndpoint)}, nil
}

// Translate posts text to /translate
func (l *Libre) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": sourceOrAuto(sourceLang),
		"target": targetLang,
		"format": "text",
	}
	if l.cfg.APIKey != "" {
		payload["api_key"] = l.cfg.APIKey
	}

	var resp struct {
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error"`
	}
	if err := l.post(ctx, "/translate", payload, &resp); err != nil {
		return "", wrap(l.name, err)
	}
	if resp.Error != "" {
		return "", wrap(l.name, fmt.Errorf("API error: %s", resp.Error))
	}
	return resp.TranslatedText, nil
}

// DetectLanguage posts text to /detect and returns the most confident match
func (l *Libre) DetectLanguage(ctx context.Context, text string) (string, error) {
	payload := map[string]string{"q": text}
	if l.cfg.APIKey != "" {
		payload["api_key"] = l.cfg.APIKey
	}

	var resp []struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	if err := l.post(ctx, "/detect", payload, &resp); err != nil {
		return "", wrap(l.name, err)
	}
	if len(resp) == 0 {
		return "", nil
	}
	return resp[0].Language, nil
}

// SupportedLanguages queries /languages
func (l *Libre) SupportedLanguages(ctx context.Context) []string {
	var resp []languageEntry
	if err := l.get(ctx, "/languages", nil, &resp); err != nil {
		return nil
	}
	return languageCodes(resp)
}
