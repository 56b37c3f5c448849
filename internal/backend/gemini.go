package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// generator produces a model answer for a prompt
type generator interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}

// genaiGenerator creates the Gemini client on first use
type genaiGenerator struct {
	cfg Config

	once   sync.Once
	client *genai.Client
	err    error
}

func (g *genaiGenerator) generate(ctx context.Context, model, prompt string) (string, error) {
	g.once.Do(func() {
		clientCfg := &genai.ClientConfig{
			APIKey:  g.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.cfg.Endpoint != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.Endpoint}
		}
		g.client, g.err = genai.NewClient(context.Background(), clientCfg)
	})
	if g.err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", g.err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}

// Gemini translates with a Google Gemini model
type Gemini struct {
	name    string
	cfg     Config
	gen     generator
	limiter *rate.Limiter
}

// NewGemini creates a Gemini backend
func NewGemini(name string, cfg Config) (Backend, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	return &Gemini{
		name:    name,
		cfg:     cfg,
		gen:     &genaiGenerator{cfg: cfg},
		limiter: newLimiter(cfg),
	}, nil
}

func (g *Gemini) Name() string  { return g.name }
func (g *Gemini) Enabled() bool { return g.cfg.Enabled }

// Translate asks the model for a bare translation of text
func (g *Gemini) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text from %s to %s. Respond with only the translation, nothing else.\n\n%s",
		sourceLang, targetLang, text)
	if sourceOrAuto(sourceLang) == "auto" {
		prompt = fmt.Sprintf("Translate the following text to %s. Respond with only the translation, nothing else.\n\n%s",
			targetLang, text)
	}

	answer, err := g.complete(ctx, prompt)
	if err != nil {
		return "", wrap(g.name, err)
	}
	return answer, nil
}

// DetectLanguage asks the model for the ISO 639-1 code of text
func (g *Gemini) DetectLanguage(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Identify the language of the following text. Respond with only its ISO 639-1 code, nothing else.\n\n%s", text)

	answer, err := g.complete(ctx, prompt)
	if err != nil {
		return "", wrap(g.name, err)
	}
	return NormalizeCode(answer), nil
}

// SupportedLanguages is empty, the model accepts any language
func (g *Gemini) SupportedLanguages(ctx context.Context) []string {
	return nil
}

func (g *Gemini) complete(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", fmt.Errorf("Gemini API key not found")
	}

	callCtx, cancel, err := begin(ctx, g.limiter, g.cfg)
	if err != nil {
		return "", err
	}
	defer cancel()

	answer, err := g.gen.generate(callCtx, g.cfg.Model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
