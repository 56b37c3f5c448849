package processor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoWorkingBackend is returned by TestBackends when every check failed
var ErrNoWorkingBackend = errors.New("no translation service is working")

// BackendCheck is the outcome of checking one backend
type BackendCheck struct {
	Name        string
	Disabled    bool
	Success     bool
	Translation string
	Duration    time.Duration
	Err         error
}

// TestBackends calls each backend directly, bypassing cache and fallback.
// A check succeeds when the translation is non-empty and differs from text.
func (p *Processor) TestBackends(ctx context.Context, text, targetLang, service string) ([]BackendCheck, error) {
	names := p.orch.Names()
	if service != "" {
		names = []string{service}
	}

	fmt.Fprintf(p.out, "Testing Translation Services\n")
	fmt.Fprintf(p.out, "Text: %q\n", text)
	fmt.Fprintf(p.out, "Target Language: %s\n\n", targetLang)

	var results []BackendCheck
	for _, name := range names {
		fmt.Fprintf(p.out, "Testing %s...\n", name)
		res := p.checkBackend(ctx, name, text, targetLang)
		results = append(results, res)

		switch {
		case res.Disabled:
			fmt.Fprintf(p.out, "  ⚠ Service is disabled (enable in config)\n\n")
		case res.Success:
			fmt.Fprintf(p.out, "  ✓ Success (%dms)\n", res.Duration.Milliseconds())
			fmt.Fprintf(p.out, "    Translation: %q\n\n", res.Translation)
		default:
			fmt.Fprintf(p.out, "  ✗ Error: %v\n\n", res.Err)
		}
	}

	successCount, failCount := 0, 0
	for _, res := range results {
		switch {
		case res.Disabled:
		case res.Success:
			successCount++
		default:
			failCount++
		}
	}

	fmt.Fprintf(p.out, "═══════════════════════════════════\n")
	fmt.Fprintf(p.out, "Test Summary\n")
	fmt.Fprintf(p.out, "═══════════════════════════════════\n")
	fmt.Fprintf(p.out, "✓ Successful: %d\n", successCount)
	fmt.Fprintf(p.out, "✗ Failed: %d\n", failCount)

	if successCount > 0 {
		fmt.Fprintf(p.out, "\nWorking Services:\n")
		for _, res := range results {
			if res.Success {
				fmt.Fprintf(p.out, "  • %s (%dms)\n", res.Name, res.Duration.Milliseconds())
			}
		}
	}
	if failCount > 0 {
		fmt.Fprintf(p.out, "\nFailed Services:\n")
		for _, res := range results {
			if !res.Success && !res.Disabled {
				fmt.Fprintf(p.out, "  • %s: %v\n", res.Name, res.Err)
			}
		}
	}

	if successCount == 0 {
		return results, ErrNoWorkingBackend
	}
	return results, nil
}

func (p *Processor) checkBackend(ctx context.Context, name, text, targetLang string) BackendCheck {
	res := BackendCheck{Name: name}

	b, ok := p.orch.Backend(name)
	if !ok {
		res.Err = fmt.Errorf("service not found")
		return res
	}
	if !b.Enabled() {
		res.Disabled = true
		return res
	}

	start := time.Now()
	translation, err := b.Translate(ctx, text, targetLang, "auto")
	res.Duration = time.Since(start)
	res.Translation = translation

	switch {
	case err != nil:
		res.Err = err
	case translation == "" || translation == text:
		res.Err = fmt.Errorf("translation failed or returned original text")
	default:
		res.Success = true
	}
	return res
}
