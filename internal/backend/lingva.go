package backend

import (
	"context"
	"net/url"
)

// DefaultLingvaEndpoint is the public Lingva instance
const DefaultLingvaEndpoint = "https://lingva.ml"

// Lingva talks to a Lingva Translate frontend
type Lingva struct {
	*httpService
}

// NewLingva creates a Lingva backend
func NewLingva(name string, cfg Config) (Backend, error) {
	return &Lingva{httpService: newHTTPService(name, cfg, DefaultLingvaEndpoint)}, nil
}

type lingvaResponse struct {
	Translation string `json:"translation"`
	Error       string `json:"error"`
	Info        struct {
		DetectedSource string `json:"detectedSource"`
	} `json:"info"`
}

func (l *Lingva) query(ctx context.Context, source, target, text string) (lingvaResponse, error) {
	var resp lingvaResponse
	path := "/api/v1/" + url.PathEscape(source) + "/" + url.PathEscape(target) + "/" + url.PathEscape(text)
	err := l.get(ctx, path, nil, &resp)
	return resp, err
}

// Translate requests /api/v1/{source}/{target}/{text}
func (l *Lingva) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	resp, err := l.query(ctx, sourceOrAuto(sourceLang), targetLang, text)
	if err != nil {
		return "", wrap(l.name, err)
	}
	return resp.Translation, nil
}

// DetectLanguage translates into English from auto and reports the detected source
func (l *Lingva) DetectLanguage(ctx context.Context, text string) (string, error) {
	resp, err := l.query(ctx, "auto", "en", text)
	if err != nil {
		return "", wrap(l.name, err)
	}
	return resp.Info.DetectedSource, nil
}

// SupportedLanguages queries /api/v1/languages
func (l *Lingva) SupportedLanguages(ctx context.Context) []string {
	var resp struct {
		Languages []languageEntry `json:"languages"`
	}
	if err := l.get(ctx, "/api/v1/languages", nil, &resp); err != nil {
		return nil
	}

	codes := languageCodes(resp.Languages)
	// "auto" is a pseudo language used for detection only
	out := codes[:0]
	for _, c := range codes {
		if c != "auto" {
			out = append(out, c)
		}
	}
	return out
}
