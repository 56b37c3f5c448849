package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// maxListed caps the chat model list when many models are available
const maxListed = 10

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL uses the OpenAI API.
func NewLister(apiKey, baseURL string) *Lister {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
	}
}

// ChatModels returns the sorted IDs of all chat capable models
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure services.openai.api_key in .lingochain.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		id := model.ID
		if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
			strings.Contains(id, "dall-e") || strings.Contains(id, "embedding") {
			continue
		}
		if strings.Contains(id, "gpt") || strings.Contains(id, "chat") {
			chatModels = append(chatModels, id)
		}
	}
	sort.Strings(chatModels)
	return chatModels, nil
}

// ListAvailableModels prints the chat models usable for translation
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	chatModels, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat/Translation Models:")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}

	if len(chatModels) <= maxListed {
		for _, model := range chatModels {
			fmt.Fprintf(w, "  %s\n", model)
		}
		return nil
	}

	// Show only the common families
	shown := 0
	for _, model := range chatModels {
		if strings.HasPrefix(model, "gpt-4") || strings.HasPrefix(model, "gpt-3.5") {
			fmt.Fprintf(w, "  %s\n", model)
			shown++
		}
	}
	fmt.Fprintf(w, "  ... and %d more models\n", len(chatModels)-shown)
	return nil
}
