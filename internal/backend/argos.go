package backend

import (
	"context"
	"time"
)

// DefaultArgosEndpoint is a locally running Argos Translate server
const DefaultArgosEndpoint = "http://localhost:5000"

// DefaultArgosTimeout is longer than the default since Argos runs models locally
const DefaultArgosTimeout = 30 * time.Second

var argosLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh"}

// Argos talks to an offline Argos Translate server. Argos cannot detect
// languages, so "auto" is translated as English.
type Argos struct {
	*httpService
}

// NewArgos creates an Argos Translate backend
func NewArgos(name string, cfg Config) (Backend, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultArgosTimeout
	}
	return &Argos{httpService: newHTTPService(name, cfg, DefaultArgosEndpoint)}, nil
}

// Translate posts text to /translate
func (a *Argos) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "en"
	}

	payload := map[string]string{
		"q":      text,
		"source": sourceLang,
		"target": targetLang,
	}

	var resp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := a.post(ctx, "/translate", payload, &resp); err != nil {
		return "", wrap(a.name, err)
	}
	return resp.TranslatedText, nil
}

// DetectLanguage is not offered by Argos
func (a *Argos) DetectLanguage(ctx context.Context, text string) (string, error) {
	return "", nil
}

// SupportedLanguages queries /languages and falls back to the common set
func (a *Argos) SupportedLanguages(ctx context.Context) []string {
	var resp []languageEntry
	if err := a.get(ctx, "/languages", nil, &resp); err != nil || len(resp) == 0 {
		return append([]string(nil), argosLanguages...)
	}
	return languageCodes(resp)
}
