package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/snonux/lingochain/internal/batch"
	"codeberg.org/snonux/lingochain/internal/translator"
)

// ErrUntranslated is returned when every backend failed and the input was
// passed through
var ErrUntranslated = errors.New("no backend could translate the text")

// TranslateString translates a single text and prints the result
func (p *Processor) TranslateString(ctx context.Context, text, targetLang, sourceLang, service string) error {
	if text == "" {
		return fmt.Errorf("text must not be empty")
	}
	orch, err := p.chain(service)
	if err != nil {
		return err
	}

	target, source := p.languages(targetLang, sourceLang)
	fmt.Fprintf(p.out, "Translating: %s\n", text)
	fmt.Fprintf(p.out, "From: %s → To: %s\n\n", source, target)

	start := time.Now()
	res := orch.TranslateDetailed(ctx, text, target, source)
	duration := time.Since(start)

	fmt.Fprintf(p.out, "%s\n\n", res.Text)
	if res.Err != nil {
		fmt.Fprintf(p.errOut, "Warning: %v\n", res.Err)
		return ErrUntranslated
	}

	switch {
	case res.Cached:
		fmt.Fprintf(p.out, "✓ Served from cache in %dms\n", duration.Milliseconds())
	default:
		fmt.Fprintf(p.out, "✓ Translated by %s in %dms\n", res.Backend, duration.Milliseconds())
	}
	return nil
}

// BatchSummary counts the outcome of a batch file run
type BatchSummary struct {
	Total      int
	Translated int
	Skipped    int
}

// TranslateBatchFile translates every pending line of a batch file. The
// result is written to output, or printed when output is empty.
func (p *Processor) TranslateBatchFile(ctx context.Context, path, targetLang, sourceLang, service, output string) (BatchSummary, error) {
	entries, err := batch.ReadBatchFile(path)
	if err != nil {
		return BatchSummary{}, err
	}
	orch, err := p.chain(service)
	if err != nil {
		return BatchSummary{}, err
	}

	pending := batch.Pending(entries)
	summary := BatchSummary{Total: len(entries), Skipped: len(entries) - len(pending)}

	target, source := p.languages(targetLang, sourceLang)
	if len(pending) > 0 {
		fmt.Fprintf(p.out, "Translating %d texts to %s\n", len(pending), target)
		translations := orch.TranslateBatch(ctx, pending, target, source, p.progress("Processing"))
		if err := batch.Fill(entries, translations); err != nil {
			return summary, err
		}
		summary.Translated = len(translations)
	}

	if output == "" {
		fmt.Fprint(p.out, batch.Format(entries))
	} else {
		if err := batch.WriteBatchFile(output, entries); err != nil {
			return summary, err
		}
		fmt.Fprintf(p.out, "Output saved to: %s\n", output)
	}

	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total texts: %d\n", summary.Total)
	fmt.Fprintf(p.out, "Translated: %d\n", summary.Translated)
	fmt.Fprintf(p.out, "Skipped (already translated): %d\n", summary.Skipped)
	fmt.Fprintf(p.out, "================================\n")
	return summary, nil
}

// Detect prints the detected language of text
func (p *Processor) Detect(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("text must not be empty")
	}
	lang := p.orch.DetectLanguage(ctx, text)
	fmt.Fprintf(p.out, "%s\n", lang)
	return lang, nil
}

func (p *Processor) languages(targetLang, sourceLang string) (string, string) {
	if targetLang == "" {
		targetLang = p.cfg.TargetLang
	}
	if sourceLang == "" {
		sourceLang = p.cfg.SourceLang
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}
	return targetLang, sourceLang
}

// progress prints "label done/total" on a single, rewritten line
func (p *Processor) progress(label string) translator.ProgressFunc {
	return func(done, total int) {
		fmt.Fprintf(p.out, "\r%s %d/%d", label, done, total)
		if done == total {
			fmt.Fprintln(p.out)
		}
	}
}
