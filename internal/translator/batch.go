package translator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called once per input text with the number of texts done
// so far and the total. Calls never overlap.
type ProgressFunc func(done, total int)

// TranslateBatch translates texts and returns the results in input order.
//
// Identical texts are translated once and the result is fanned out to every
// position. Unique texts are processed in chunks of Batch.ChunkSize; within a
// chunk up to Batch.MaxConcurrent translations run at once and the next chunk
// starts only when the current one is finished. Batch.Delay is waited after
// each translation except the last, and after cache hits only when
// Batch.DelayOnCacheHit is set. Texts not reached before ctx is done are
// returned unchanged.
func (o *Orchestrator) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string, progress ProgressFunc) []string {
	results := make([]string, len(texts))
	copy(results, texts)
	if len(texts) == 0 {
		return results
	}
	targetLang, sourceLang = o.languages(targetLang, sourceLang)

	// positions of every unique text, in first seen order
	var unique []string
	positions := make(map[string][]int)
	for i, text := range texts {
		if _, seen := positions[text]; !seen {
			unique = append(unique, text)
		}
		positions[text] = append(positions[text], i)
	}

	chunkSize := o.cfg.Batch.ChunkSize
	if chunkSize <= 0 {
		chunkSize = len(unique)
	}
	limit := o.cfg.Batch.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func(text, translated string) {
		mu.Lock()
		defer mu.Unlock()
		for _, pos := range positions[text] {
			results[pos] = translated
			done++
			if progress != nil {
				progress(done, len(texts))
			}
		}
	}

	for start := 0; start < len(unique); start += chunkSize {
		end := min(start+chunkSize, len(unique))

		var g errgroup.Group
		g.SetLimit(limit)
		for idx := start; idx < end; idx++ {
			text := unique[idx]
			last := idx == len(unique)-1

			g.Go(func() error {
				if ctx.Err() != nil {
					report(text, text)
					return nil
				}

				res := o.TranslateDetailed(ctx, text, targetLang, sourceLang)
				report(text, res.Text)

				if !last && text != "" && o.cfg.Batch.Delay > 0 && (!res.Cached || o.cfg.Batch.DelayOnCacheHit) {
					o.sleep(ctx, o.cfg.Batch.Delay)
				}
				return nil
			})
		}
		g.Wait()
	}

	return results
}
