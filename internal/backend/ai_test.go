package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

func TestOpenAITranslate(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Hello") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Hallo \n"},"finish_reason":"stop"}]}`))
	})

	b, err := NewOpenAI("openai", Config{Enabled: true, APIKey: "test-api-key", Endpoint: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}

	got, err := b.Translate(context.Background(), "Hello", "de", "auto")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Hallo" {
		t.Errorf("Translate() = %q, want Hallo", got)
	}
}

func TestOpenAINoAPIKey(t *testing.T) {
	b, _ := NewOpenAI("openai", Config{Enabled: true})

	_, err := b.Translate(context.Background(), "Hello", "de", "en")
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "OpenAI API key not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenAITranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	b, _ := NewOpenAI("openai", Config{Enabled: true, APIKey: apiKey})
	got, err := b.Translate(context.Background(), "apple", "bg", "en")
	if err != nil {
		t.Errorf("Translate failed: %v", err)
	}
	if got == "" {
		t.Error("Got empty translation")
	}
	t.Logf("Translation of 'apple': %s", got)
}

type fakeGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeGenerator) generate(ctx context.Context, model, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func TestGemini(t *testing.T) {
	gen := &fakeGenerator{answer: " pt-BR\n"}
	b, _ := NewGemini("gemini", Config{Enabled: true, APIKey: "key"})
	b.(*Gemini).gen = gen

	lang, err := b.DetectLanguage(context.Background(), "Olá")
	if err != nil || lang != "pt" {
		t.Errorf("DetectLanguage() = %q, %v; want pt", lang, err)
	}

	gen.answer = "Ciao"
	got, err := b.Translate(context.Background(), "Hello", "it", "en")
	if err != nil || got != "Ciao" {
		t.Errorf("Translate() = %q, %v", got, err)
	}
	if !strings.Contains(gen.prompts[1], "from en to it") {
		t.Errorf("prompt = %q", gen.prompts[1])
	}

	gen.err = errors.New("quota")
	_, err = b.Translate(context.Background(), "Hello", "it", "en")
	var be *Error
	if !errors.As(err, &be) || be.Backend != "gemini" {
		t.Errorf("expected *Error from gemini, got %v", err)
	}
}

func TestGeminiNoAPIKey(t *testing.T) {
	b, _ := NewGemini("gemini", Config{Enabled: true})
	if _, err := b.Translate(context.Background(), "Hello", "it", "en"); err == nil {
		t.Error("Expected error for missing API key")
	}
	if b.(*Gemini).cfg.Model != DefaultGeminiModel {
		t.Errorf("Model = %q, want %q", b.(*Gemini).cfg.Model, DefaultGeminiModel)
	}
}

type fakeInvoker struct {
	input  *lambda.InvokeInput
	output *lambda.InvokeOutput
	err    error
}

func (f *fakeInvoker) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.input = params
	return f.output, f.err
}

func newTestLambda(inv invoker) Backend {
	b, _ := NewLambda("lambda", Config{Enabled: true, Function: "translator-en-de"})
	b.(*Lambda).client = inv
	return b
}

func TestLambdaTranslate(t *testing.T) {
	inv := &fakeInvoker{output: &lambda.InvokeOutput{
		Payload: []byte(`{"translations":[["Hallo Welt"]]}`),
	}}
	b := newTestLambda(inv)

	got, err := b.Translate(context.Background(), "Hello world", "de", "en")
	if err != nil || got != "Hallo Welt" {
		t.Fatalf("Translate() = %q, %v", got, err)
	}

	if aws.ToString(inv.input.FunctionName) != "translator-en-de" {
		t.Errorf("FunctionName = %q", aws.ToString(inv.input.FunctionName))
	}
	var req lambdaRequest
	if err := json.Unmarshal(inv.input.Payload, &req); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if req.TargetLang != "de" || req.SourceLang != "en" || req.Chunks[0][0] != "Hello world" {
		t.Errorf("unexpected payload %+v", req)
	}
}

func TestLambdaErrors(t *testing.T) {
	tests := []struct {
		name string
		inv  *fakeInvoker
	}{
		{name: "invoke fails", inv: &fakeInvoker{err: errors.New("throttled")}},
		{name: "function error", inv: &fakeInvoker{output: &lambda.InvokeOutput{FunctionError: aws.String("Unhandled")}}},
		{name: "translator error", inv: &fakeInvoker{output: &lambda.InvokeOutput{Payload: []byte(`{"error":"model not loaded"}`)}}},
		{name: "empty translations", inv: &fakeInvoker{output: &lambda.InvokeOutput{Payload: []byte(`{"translations":[]}`)}}},
		{name: "bad payload", inv: &fakeInvoker{output: &lambda.InvokeOutput{Payload: []byte(`not json`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLambda(tt.inv).Translate(context.Background(), "Hello", "de", "en")
			var be *Error
			if !errors.As(err, &be) {
				t.Errorf("expected *Error, got %v", err)
			}
		})
	}
}

func TestLambdaWithoutFunction(t *testing.T) {
	b, _ := NewLambda("lambda", Config{Enabled: true})
	if _, err := b.Translate(context.Background(), "Hello", "de", "en"); err == nil {
		t.Error("expected an error without a function name")
	}
}

func TestLambdaRetriesFailedConnect(t *testing.T) {
	inv := &fakeInvoker{output: &lambda.InvokeOutput{
		Payload: []byte(`{"translations":[["Hallo"]]}`),
	}}
	b, _ := NewLambda("lambda", Config{Enabled: true, Function: "translator-en-de"})
	l := b.(*Lambda)

	connects := 0
	l.connect = func(ctx context.Context) (invoker, error) {
		connects++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return inv, nil
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Translate(cancelled, "Hello", "de", "en"); err == nil {
		t.Fatal("expected an error with a cancelled context")
	}

	got, err := b.Translate(context.Background(), "Hello", "de", "en")
	if err != nil || got != "Hallo" {
		t.Fatalf("Translate() = %q, %v", got, err)
	}
	if _, err := b.Translate(context.Background(), "Hello", "de", "en"); err != nil {
		t.Fatalf("Translate() failed: %v", err)
	}
	if connects != 2 {
		t.Errorf("connects = %d, want 2", connects)
	}
}
