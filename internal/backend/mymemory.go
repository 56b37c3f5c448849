package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMyMemoryEndpoint is the MyMemory API
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net"

var myMemoryLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
	"ar", "hi", "nl", "pl", "tr", "sv", "da", "fi", "no", "cs",
}

// MyMemory talks to the MyMemory translation memory API
type MyMemory struct {
	*httpService
}

// NewMyMemory creates a MyMemory backend
func NewMyMemory(name string, cfg Config) (Backend, error) {
	return &MyMemory{httpService: newHTTPService(name, cfg, DefaultMyMemoryEndpoint)}, nil
}

// Translate requests /get with a source|target language pair. Setting Email
// raises the daily quota.
func (m *MyMemory) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", sourceOrAuto(sourceLang)+"|"+targetLang)
	if m.cfg.Email != "" {
		query.Set("de", m.cfg.Email)
	}

	var resp struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  json.RawMessage `json:"responseStatus"`
		ResponseDetails string          `json:"responseDetails"`
	}
	if err := m.get(ctx, "/get", query, &resp); err != nil {
		return "", wrap(m.name, err)
	}

	// The status is sent as a number or as a string depending on the error
	if status := strings.Trim(string(resp.ResponseStatus), `"`); status != "" && status != "200" {
		return "", wrap(m.name, fmt.Errorf("API error (status %s): %s", status, resp.ResponseDetails))
	}
	return resp.ResponseData.TranslatedText, nil
}

// DetectLanguage is not offered by MyMemory
func (m *MyMemory) DetectLanguage(ctx context.Context, text string) (string, error) {
	return "", nil
}

// SupportedLanguages returns the common MyMemory languages
func (m *MyMemory) SupportedLanguages(ctx context.Context) []string {
	return append([]string(nil), myMemoryLanguages...)
}
