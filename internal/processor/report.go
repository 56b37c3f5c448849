package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"codeberg.org/snonux/lingochain/internal"
)

// recentShown is the number of log entries printed by Stats
const recentShown = 10

// ClearCache flushes the translation cache. With withAnalytics the recorded
// analytics are dropped as well.
func (p *Processor) ClearCache(ctx context.Context, withAnalytics bool) error {
	fmt.Fprintf(p.out, "Clearing translation cache...\n")
	if err := p.orch.ClearCache(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(p.out, "✓ Translation cache cleared successfully!\n")

	if withAnalytics {
		if err := p.orch.ResetAnalytics(ctx); err != nil {
			return fmt.Errorf("failed to clear analytics: %w", err)
		}
		fmt.Fprintf(p.out, "✓ Analytics data cleared successfully!\n")
	}
	return nil
}

// Stats prints the analytics report
func (p *Processor) Stats() {
	snap := p.orch.Analytics()

	fmt.Fprintf(p.out, "=== Translation Analytics ===\n")
	fmt.Fprintf(p.out, "Total requests: %d\n", snap.TotalRequests())
	fmt.Fprintf(p.out, "Cache hits:     %d\n", snap.CacheHits)
	fmt.Fprintf(p.out, "Cache misses:   %d\n", snap.CacheMisses)
	fmt.Fprintf(p.out, "Hit rate:       %.2f%%\n", snap.HitRate())
	fmt.Fprintf(p.out, "Failures:       %d\n", snap.Failures)

	if len(snap.Latency) > 0 {
		names := make([]string, 0, len(snap.Latency))
		for name := range snap.Latency {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(p.out, "\nService latency:\n")
		for _, name := range names {
			l := snap.Latency[name]
			fmt.Fprintf(p.out, "  %-10s %4d calls  avg %7.1fms  min %7.1fms  max %7.1fms\n",
				name, l.Count, l.AvgMs(), l.MinMs, l.MaxMs)
		}
	}

	if n := len(snap.Translations); n > 0 {
		fmt.Fprintf(p.out, "\nRecent translations:\n")
		recent := snap.Translations
		if n > recentShown {
			recent = recent[n-recentShown:]
		}
		for i := len(recent) - 1; i >= 0; i-- {
			e := recent[i]
			fmt.Fprintf(p.out, "  [%s] %s → %s (%s, %s)\n",
				e.Timestamp.Format("2006-01-02 15:04"),
				internal.Excerpt(e.Source, 40), internal.Excerpt(e.Translation, 40), e.TargetLang, e.Backend)
		}
	}
}

// Languages prints the supported languages per backend
func (p *Processor) Languages(ctx context.Context, service string) error {
	names := p.orch.Names()
	if service != "" {
		if _, ok := p.orch.Backend(service); !ok {
			return fmt.Errorf("unknown service: %s", service)
		}
		names = []string{service}
	}

	for _, name := range names {
		b, _ := p.orch.Backend(name)
		if !b.Enabled() {
			fmt.Fprintf(p.out, "%s (disabled)\n", name)
			continue
		}

		langs := b.SupportedLanguages(ctx)
		fmt.Fprintf(p.out, "%s:\n", name)
		if len(langs) == 0 {
			fmt.Fprintf(p.out, "  any (not advertised)\n")
			continue
		}
		fmt.Fprintf(p.out, "  %s\n", strings.Join(langs, ", "))
	}
	return nil
}
