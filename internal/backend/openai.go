package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAI translates with a chat completion model
type OpenAI struct {
	name    string
	cfg     Config
	client  *openai.Client
	limiter *rate.Limiter
}

// NewOpenAI creates an OpenAI backend. Endpoint overrides the API base URL,
// which also allows OpenAI compatible servers.
func NewOpenAI(name string, cfg Config) (Backend, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	return &OpenAI{
		name:    name,
		cfg:     cfg,
		client:  openai.NewClientWithConfig(clientCfg),
		limiter: newLimiter(cfg),
	}, nil
}

func (o *OpenAI) Name() string  { return o.name }
func (o *OpenAI) Enabled() bool { return o.cfg.Enabled }

// Translate asks the model for a bare translation of text
func (o *OpenAI) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text from %s to %s. Respond with only the translation, nothing else.\n\n%s",
		sourceLang, targetLang, text)
	if sourceOrAuto(sourceLang) == "auto" {
		prompt = fmt.Sprintf("Translate the following text to %s. Respond with only the translation, nothing else.\n\n%s",
			targetLang, text)
	}

	answer, err := o.complete(ctx, prompt)
	if err != nil {
		return "", wrap(o.name, err)
	}
	return answer, nil
}

// DetectLanguage asks the model for the ISO 639-1 code of text
func (o *OpenAI) DetectLanguage(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Identify the language of the following text. Respond with only its ISO 639-1 code, nothing else.\n\n%s", text)

	answer, err := o.complete(ctx, prompt)
	if err != nil {
		return "", wrap(o.name, err)
	}
	return NormalizeCode(answer), nil
}

// SupportedLanguages is empty, the model accepts any language
func (o *OpenAI) SupportedLanguages(ctx context.Context) []string {
	return nil
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	if o.cfg.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	callCtx, cancel, err := begin(ctx, o.limiter, o.cfg)
	if err != nil {
		return "", err
	}
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	}

	resp, err := o.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
