package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal"
	"codeberg.org/snonux/lingochain/internal/config"
	"codeberg.org/snonux/lingochain/internal/logging"
	"codeberg.org/snonux/lingochain/internal/processor"
)

// newProcessor builds the processor behind every translation command.
// Tests swap it for one running on mock backends.
var newProcessor = processor.New

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lingochain",
		Short: "Multi-backend translation with caching and fallback",
		Long: `lingochain translates text, batch files and structured locale files
(JSON, YAML, TOML) through a chain of translation services. Results are
cached and every failing service falls back to the next one.

Examples:
  lingochain translate "Hello world" de          # Translate a string
  lingochain file locales/en/app.json fr          # Translate a locale file
  lingochain sync --source en --target de,fr      # Sync a locales directory
  lingochain serve --addr :8080                   # Run the HTTP API`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			InitConfig(flags.CfgFile)
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newTranslateCommand(flags),
		newBatchCommand(flags),
		newFileCommand(flags),
		newSyncCommand(flags),
		newDetectCommand(flags),
		newTestBackendsCommand(flags),
		newClearCacheCommand(flags),
		newStatsCommand(flags),
		newLanguagesCommand(flags),
		newModelsCommand(flags),
		newServeCommand(flags),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lingochain.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
}

func bindFlagsToViper(fs *pflag.FlagSet) {
	viper.BindPFlag("server.addr", fs.Lookup("addr"))
	viper.BindPFlag("cache.watch_paths", fs.Lookup("watch"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".lingochain" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lingochain")
	}

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the global viper state and creates the logger
func loadConfig(flags *Flags) (*config.Config, *zap.Logger, error) {
	if flags.Verbose {
		viper.Set("log.level", "debug")
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withProcessor wraps fn into a RunE that loads the configuration, builds
// the processor and persists analytics once fn returns
func withProcessor(flags *Flags, fn func(ctx context.Context, cmd *cobra.Command, args []string, p *processor.Processor) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(flags)
		if err != nil {
			return err
		}
		defer logger.Sync()

		p, err := newProcessor(cfg, logger)
		if err != nil {
			return err
		}
		p.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

		ctx := commandContext(cmd)
		runErr := fn(ctx, cmd, args, p)
		// The command context may already be cancelled on Ctrl-C
		if err := p.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
