package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/lingochain/internal/locale"
	"codeberg.org/snonux/lingochain/internal/models"
	"codeberg.org/snonux/lingochain/internal/processor"
	"codeberg.org/snonux/lingochain/internal/server"
	"codeberg.org/snonux/lingochain/internal/tree"
	"codeberg.org/snonux/lingochain/internal/watch"
)

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <text> [target]",
		Short: "Translate a single string",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			target := flags.TargetLang
			if len(args) > 1 {
				target = args[1]
			}
			return p.TranslateString(ctx, args[0], target, flags.SourceLang, flags.Service)
		}),
	}
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", "", "Source language (default from config, auto-detect when empty)")
	cmd.Flags().StringVarP(&flags.TargetLang, "target", "t", "", "Target language (default from config)")
	cmd.Flags().StringVar(&flags.Service, "service", "", "Use only this translation service")
	return cmd
}

func newBatchCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Translate the lines of a batch file",
		Long: `Translate every line of a batch file. Lines look like

  text
  text = existing translation

Lines that already carry a translation are kept, '#' starts a comment.`,
		Args: cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			if flags.BatchFile == "" {
				return fmt.Errorf("please specify a batch file using --file")
			}
			_, err := p.TranslateBatchFile(ctx, flags.BatchFile, flags.TargetLang, flags.SourceLang, flags.Service, flags.Output)
			return err
		}),
	}
	cmd.Flags().StringVarP(&flags.BatchFile, "file", "f", "", "Batch file (one text per line)")
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", "", "Source language")
	cmd.Flags().StringVarP(&flags.TargetLang, "target", "t", "", "Target language")
	cmd.Flags().StringVar(&flags.Service, "service", "", "Use only this translation service")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func newFileCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <source-file> <target>",
		Short: "Translate a JSON, YAML or TOML locale file",
		Args:  cobra.ExactArgs(2),
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			var format tree.Format
			if flags.Format != "" {
				f, err := tree.ParseFormat(flags.Format)
				if err != nil {
					return err
				}
				format = f
			}

			_, err := p.TranslateFile(ctx, processor.FileOptions{
				Source:     args[0],
				TargetLang: args[1],
				SourceLang: flags.SourceLang,
				Service:    flags.Service,
				Output:     flags.Output,
				Format:     format,
			})
			return err
		}),
	}
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file (default <name>.<target>.<format> next to the source)")
	cmd.Flags().StringVar(&flags.Format, "format", "", "Output format: json, yaml or toml (default: same as input)")
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", "", "Source language")
	cmd.Flags().StringVar(&flags.Service, "service", "", "Use only this translation service")
	return cmd
}

func newSyncCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Translate a locales directory into several languages",
		Long: `Translate every locale file under <path>/<source>/ into <path>/<target>/
for each target language. Existing target files are skipped unless --force.
With --archive the existing target directories are moved aside first.`,
		Args: cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			source := flags.SourceLang
			if source == "" {
				source = p.Config().SourceLang
			}

			summary, err := p.Sync(ctx, processor.SyncOptions{
				Path:       flags.Path,
				SourceLang: source,
				Targets:    flags.Targets,
				Service:    flags.Service,
				Force:      flags.Force,
				Archive:    flags.Archive,
			})
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d locale files could not be translated", summary.Failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", "", "Source locale directory (default from config)")
	cmd.Flags().StringSliceVarP(&flags.Targets, "target", "t", nil, "Target languages, comma separated")
	cmd.Flags().StringVarP(&flags.Path, "path", "p", flags.Path, "Locales directory")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite existing target files")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move existing target directories to <path>/archive first")
	cmd.Flags().StringVar(&flags.Service, "service", "", "Use only this translation service")
	return cmd
}

func newDetectCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text>",
		Short: "Detect the language of a text",
		Args:  cobra.ExactArgs(1),
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			_, err := p.Detect(ctx, args[0])
			return err
		}),
	}
}

func newTestBackendsCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-backends",
		Short: "Check every translation service directly",
		Args:  cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			target := flags.TargetLang
			if target == "" {
				target = "es"
			}
			_, err := p.TestBackends(ctx, flags.Text, target, flags.Service)
			return err
		}),
	}
	cmd.Flags().StringVar(&flags.Text, "text", flags.Text, "Text to translate")
	cmd.Flags().StringVarP(&flags.TargetLang, "target", "t", "", "Target language (default es)")
	cmd.Flags().StringVar(&flags.Service, "service", "", "Only test this service")
	return cmd
}

func newClearCacheCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Flush the translation cache",
		Args:  cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			return p.ClearCache(ctx, flags.Analytics)
		}),
	}
	cmd.Flags().BoolVar(&flags.Analytics, "analytics", false, "Clear the analytics as well")
	return cmd
}

func newStatsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache and latency analytics",
		Args:  cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			p.Stats()
			return nil
		}),
	}
}

func newLanguagesCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages each service supports",
		Args:  cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			return p.Languages(ctx, flags.Service)
		}),
	}
	cmd.Flags().StringVar(&flags.Service, "service", "", "Only list this service")
	return cmd
}

func newModelsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI chat models available to the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			sc := cfg.Services["openai"]
			lister := models.NewLister(sc.APIKey, sc.Endpoint)
			return lister.ListAvailableModels(commandContext(cmd), cmd.OutOrStdout())
		},
	}
}

func newServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: withProcessor(flags, func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error {
			return serve(ctx, p)
		}),
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&flags.WatchPaths, "watch", nil, "Locale directories whose changes flush the cache")
	bindFlagsToViper(cmd.Flags())
	return cmd
}

// serve runs the HTTP API and, when configured, the locale file watcher
// until ctx is cancelled
func serve(ctx context.Context, p *processor.Processor) error {
	cfg := p.Config()
	logger := p.Logger()
	orch := p.Orchestrator()
	srv := server.New(cfg.Server, orch, locale.NewDetector(cfg.Locale), logger)

	var w *watch.Watcher
	if cfg.Cache.AutoInvalidate && len(cfg.Cache.WatchPaths) > 0 {
		var err error
		if w, err = watch.New(cfg.Cache.WatchPaths, orch, logger); err != nil {
			return fmt.Errorf("failed to watch locale files: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	fmt.Fprintf(p.Output(), "Listening on %s\n", cfg.Server.Addr)
	return g.Wait()
}
