package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/lingochain/internal/archive"
	"codeberg.org/snonux/lingochain/internal/tree"
)

// FileOptions controls TranslateFile
type FileOptions struct {
	Source     string
	TargetLang string
	SourceLang string
	Service    string

	// Output defaults to <dir>/<name>.<target>.<ext> next to Source
	Output string

	// Format defaults to the format of Source
	Format tree.Format
}

// TranslateFile translates a locale file and returns the output path
func (p *Processor) TranslateFile(ctx context.Context, opts FileOptions) (string, error) {
	t, inFormat, err := tree.LoadFile(opts.Source)
	if err != nil {
		return "", err
	}

	outFormat := inFormat
	if opts.Format != "" {
		outFormat = opts.Format
	}

	output := opts.Output
	if output == "" {
		output = defaultOutputPath(opts.Source, opts.TargetLang, outFormat)
	}

	orch, err := p.chain(opts.Service)
	if err != nil {
		return "", err
	}
	target, source := p.languages(opts.TargetLang, opts.SourceLang)

	fmt.Fprintf(p.out, "Translating file: %s\n", opts.Source)
	fmt.Fprintf(p.out, "Target language: %s\n", target)

	translated, err := tree.NewTranslator(orch).TranslateTree(ctx, t, target, source, p.progress("Translating"))
	if err != nil {
		return "", err
	}
	if err := tree.SaveFile(output, translated, outFormat); err != nil {
		return "", err
	}

	fmt.Fprintf(p.out, "✓ Translation completed!\n")
	fmt.Fprintf(p.out, "Output saved to: %s\n", output)
	fmt.Fprintf(p.out, "Total items translated: %d\n", len(tree.Texts(t)))
	return output, nil
}

func defaultOutputPath(source, targetLang string, format tree.Format) string {
	dir := filepath.Dir(source)
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, fmt.Sprintf("%s.%s.%s", name, targetLang, format))
}

// SyncOptions controls Sync
type SyncOptions struct {
	// Path holds one directory per language
	Path       string
	SourceLang string
	Targets    []string
	Service    string
	Force      bool

	// Archive moves an existing target directory to <path>/archive before
	// it is regenerated
	Archive bool
}

// SyncSummary counts files per outcome over all targets
type SyncSummary struct {
	Translated int
	Skipped    int
	Failed     int
}

// Sync translates every locale file of <path>/<source>/ into
// <path>/<target>/ for each target. Existing files are skipped unless
// opts.Force is set. A failing file is reported and the sync continues.
func (p *Processor) Sync(ctx context.Context, opts SyncOptions) (SyncSummary, error) {
	var summary SyncSummary

	targets := cleanTargets(opts.Targets)
	if len(targets) == 0 {
		return summary, fmt.Errorf("please specify target language(s) using --target")
	}

	sourceDir := filepath.Join(opts.Path, opts.SourceLang)
	files, err := localeFiles(sourceDir)
	if err != nil {
		return summary, err
	}

	orch, err := p.chain(opts.Service)
	if err != nil {
		return summary, err
	}
	trees := tree.NewTranslator(orch)

	fmt.Fprintf(p.out, "Syncing translations from '%s' to: %s\n\n", opts.SourceLang, strings.Join(targets, ", "))

	for _, target := range targets {
		fmt.Fprintf(p.out, "Processing: %s\n", target)
		targetDir := filepath.Join(opts.Path, target)

		if opts.Archive {
			if _, err := os.Stat(targetDir); err == nil {
				archived, err := archive.Dir(targetDir)
				if err != nil {
					return summary, err
				}
				fmt.Fprintf(p.out, "  Archived existing %s to: %s\n", target, archived)
			}
		}

		for i, name := range files {
			src := filepath.Join(sourceDir, name)
			dst := filepath.Join(targetDir, name)
			fmt.Fprintf(p.out, "  [%d/%d] %s", i+1, len(files), name)

			if _, err := os.Stat(dst); err == nil && !opts.Force {
				fmt.Fprintf(p.out, " (exists, skipped)\n")
				summary.Skipped++
				continue
			}

			if err := p.syncFile(ctx, trees, src, dst, target, opts.SourceLang); err != nil {
				fmt.Fprintf(p.out, "\n")
				fmt.Fprintf(p.errOut, "  Failed to translate %s: %v\n", name, err)
				summary.Failed++
				continue
			}
			fmt.Fprintf(p.out, " ✓\n")
			summary.Translated++
		}
		fmt.Fprintf(p.out, "  ✓ Completed: %s\n\n", target)
	}

	fmt.Fprintf(p.out, "Translated: %d, skipped: %d, failed: %d\n", summary.Translated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (p *Processor) syncFile(ctx context.Context, trees *tree.Translator, src, dst, targetLang, sourceLang string) error {
	t, format, err := tree.LoadFile(src)
	if err != nil {
		return err
	}
	translated, err := trees.TranslateTree(ctx, t, targetLang, sourceLang, nil)
	if err != nil {
		return err
	}
	return tree.SaveFile(dst, translated, format)
}

// localeFiles lists the names of the tree files directly inside dir
func localeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source language directory not found: %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := tree.FormatOf(e.Name()); err != nil {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

func cleanTargets(targets []string) []string {
	var out []string
	for _, t := range targets {
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
