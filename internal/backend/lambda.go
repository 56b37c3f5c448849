package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"golang.org/x/time/rate"
)

// invoker is the part of the Lambda client the backend needs
type invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// lambdaRequest is the payload of a chunked translator function
type lambdaRequest struct {
	Chunks     [][]string `json:"chunks"`
	SourceLang string     `json:"source_lang,omitempty"`
	TargetLang string     `json:"target_lang"`
}

// lambdaResponse mirrors lambdaRequest, one translation per input text
type lambdaResponse struct {
	Translations [][]string `json:"translations"`
	Error        string     `json:"error,omitempty"`
}

// Lambda invokes a translator function on AWS Lambda. The function takes
// chunks of texts and answers with translations in the same shape.
type Lambda struct {
	name    string
	cfg     Config
	limiter *rate.Limiter

	// connect builds the client. A failed attempt is retried on the next call.
	connect func(ctx context.Context) (invoker, error)

	mu     sync.Mutex
	client invoker
}

// NewLambda creates a Lambda backend. Function names the translator function,
// Region overrides the region of the default AWS configuration.
func NewLambda(name string, cfg Config) (Backend, error) {
	l := &Lambda{
		name:    name,
		cfg:     cfg,
		limiter: newLimiter(cfg),
	}
	l.connect = l.connectAWS
	return l, nil
}

func (l *Lambda) Name() string  { return l.name }
func (l *Lambda) Enabled() bool { return l.cfg.Enabled }

// lambdaClient loads the AWS configuration on first successful use
func (l *Lambda) lambdaClient(ctx context.Context) (invoker, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}
	client, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}

func (l *Lambda) connectAWS(ctx context.Context) (invoker, error) {
	var opts []func(*config.LoadOptions) error
	if l.cfg.Region != "" {
		opts = append(opts, config.WithRegion(l.cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return lambda.NewFromConfig(awsCfg), nil
}

// Translate sends text as a single one-element chunk
func (l *Lambda) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if l.cfg.Function == "" {
		return "", wrap(l.name, fmt.Errorf("no Lambda function configured"))
	}

	client, err := l.lambdaClient(ctx)
	if err != nil {
		return "", wrap(l.name, err)
	}

	callCtx, cancel, err := begin(ctx, l.limiter, l.cfg)
	if err != nil {
		return "", wrap(l.name, err)
	}
	defer cancel()

	req := lambdaRequest{
		Chunks:     [][]string{{text}},
		TargetLang: targetLang,
	}
	if src := sourceOrAuto(sourceLang); src != "auto" {
		req.SourceLang = src
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", wrap(l.name, fmt.Errorf("failed to marshal request: %w", err))
	}

	result, err := client.Invoke(callCtx, &lambda.InvokeInput{
		FunctionName: aws.String(l.cfg.Function),
		Payload:      payload,
	})
	if err != nil {
		return "", wrap(l.name, fmt.Errorf("failed to invoke %s: %w", l.cfg.Function, err))
	}

	if result.FunctionError != nil {
		return "", wrap(l.name, fmt.Errorf("lambda error: %s", *result.FunctionError))
	}

	var resp lambdaResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", wrap(l.name, fmt.Errorf("failed to parse response: %w", err))
	}
	if resp.Error != "" {
		return "", wrap(l.name, fmt.Errorf("translator error: %s", resp.Error))
	}
	if len(resp.Translations) == 0 || len(resp.Translations[0]) == 0 {
		return "", wrap(l.name, fmt.Errorf("no translation returned"))
	}
	return resp.Translations[0][0], nil
}

// DetectLanguage is not offered by translator functions
func (l *Lambda) DetectLanguage(ctx context.Context, text string) (string, error) {
	return "", nil
}

// SupportedLanguages is unknown without calling the function
func (l *Lambda) SupportedLanguages(ctx context.Context) []string {
	return nil
}
