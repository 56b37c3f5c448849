package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal/cache"
	"codeberg.org/snonux/lingochain/internal/config"
	"codeberg.org/snonux/lingochain/internal/processor"
	"codeberg.org/snonux/lingochain/internal/testutil"
)

const testConfig = `target_lang: de
batch:
  delay: 0s
log:
  level: error
`

// setupCLI resets the global viper state, writes a config file and makes
// every command run on mocks sharing one memory store
func setupCLI(t *testing.T, mocks ...*testutil.MockBackend) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "lingochain.yaml")
	testutil.CreateTestFile(t, cfgPath, []byte(testConfig))

	store, err := cache.NewMemoryStore(100)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}

	orig := newProcessor
	newProcessor = func(cfg *config.Config, logger *zap.Logger) (*processor.Processor, error) {
		p := processor.NewWithBackends(cfg, testutil.Backends(mocks...), store, logger)
		// Analytics survive between commands the way processor.New restores them
		if err := p.Orchestrator().Recorder().Load(context.Background(), store, cfg.Cache.Prefix); err != nil {
			return nil, err
		}
		return p, nil
	}
	t.Cleanup(func() { newProcessor = orig })

	return cfgPath
}

func run(t *testing.T, ctx context.Context, cfgPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := CreateRootCommand(NewFlags())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "lingochain" {
		t.Errorf("Expected Use to be 'lingochain', got %s", cmd.Use)
	}

	for _, name := range []string{"config", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s to exist", name)
		}
	}

	subcommands := []struct {
		name  string
		flags []string
	}{
		{"translate", []string{"source", "target", "service"}},
		{"batch", []string{"file", "source", "target", "service", "output"}},
		{"file", []string{"output", "format", "source", "service"}},
		{"sync", []string{"source", "target", "path", "force", "archive", "service"}},
		{"detect", nil},
		{"test-backends", []string{"text", "target", "service"}},
		{"clear-cache", []string{"analytics"}},
		{"stats", nil},
		{"languages", []string{"service"}},
		{"models", nil},
		{"serve", []string{"addr", "watch"}},
	}

	for _, tt := range subcommands {
		t.Run("command_"+tt.name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.name})
			if err != nil || sub.Name() != tt.name {
				t.Fatalf("Expected subcommand %s to exist", tt.name)
			}
			for _, flag := range tt.flags {
				if sub.Flags().Lookup(flag) == nil {
					t.Errorf("Expected flag --%s on %s", flag, tt.name)
				}
			}
		})
	}
}

func TestTranslateCommand(t *testing.T) {
	mock := testutil.NewMockBackend("libre")
	mock.Translations = map[string]string{"Hello": "Hallo"}
	cfgPath := setupCLI(t, mock)
	ctx := context.Background()

	stdout, _, err := run(t, ctx, cfgPath, "translate", "Hello")
	if err != nil {
		t.Fatalf("translate error = %v", err)
	}
	for _, want := range []string{"From: auto → To: de", "Hallo", "Translated by libre"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = run(t, ctx, cfgPath, "translate", "Hello")
	if err != nil {
		t.Fatalf("translate error = %v", err)
	}
	if !strings.Contains(stdout, "Served from cache") {
		t.Errorf("second run should be cached:\n%s", stdout)
	}
	if mock.CallCount() != 1 {
		t.Errorf("backend called %d times, want 1", mock.CallCount())
	}

	stdout, _, _ = run(t, ctx, cfgPath, "translate", "Hi", "fr", "--source", "en")
	if !strings.Contains(stdout, "fr:Hi") {
		t.Errorf("positional target not used:\n%s", stdout)
	}
}

func TestTranslateCommandErrors(t *testing.T) {
	failing := testutil.NewMockBackend("libre")
	failing.Errors = map[string]error{"Boom": os.ErrDeadlineExceeded}
	cfgPath := setupCLI(t, failing)
	ctx := context.Background()

	if _, _, err := run(t, ctx, cfgPath, "translate", "Hi", "--service", "deepl"); err == nil || !strings.Contains(err.Error(), "unknown service") {
		t.Errorf("expected unknown service error, got %v", err)
	}

	if _, _, err := run(t, ctx, cfgPath, "translate"); err == nil {
		t.Error("expected an error without text")
	}

	_, stderr, err := run(t, ctx, cfgPath, "translate", "Boom")
	if err != processor.ErrUntranslated {
		t.Errorf("error = %v, want ErrUntranslated", err)
	}
	if !strings.Contains(stderr, "Warning:") {
		t.Errorf("expected a warning on stderr, got %q", stderr)
	}
}

func TestBatchCommand(t *testing.T) {
	cfgPath := setupCLI(t, testutil.NewMockBackend("libre"))
	dir := t.TempDir()
	input := filepath.Join(dir, "words.txt")
	output := filepath.Join(dir, "out", "words.txt")
	testutil.CreateTestFile(t, input, []byte("# greetings\nHello\nBye = Tschüss\n"))

	if _, _, err := run(t, context.Background(), cfgPath, "batch"); err == nil {
		t.Error("expected an error without --file")
	}

	stdout, _, err := run(t, context.Background(), cfgPath, "batch", "--file", input, "--output", output)
	if err != nil {
		t.Fatalf("batch error = %v", err)
	}
	testutil.AssertFileContains(t, output, "Hello = de:Hello")
	testutil.AssertFileContains(t, output, "Bye = Tschüss")
	if !strings.Contains(stdout, "Skipped (already translated): 1") {
		t.Errorf("summary missing:\n%s", stdout)
	}
}

func TestFileCommand(t *testing.T) {
	mock := testutil.NewMockBackend("libre")
	mock.Translations = map[string]string{"Welcome": "Bienvenue"}
	cfgPath := setupCLI(t, mock)
	dir := t.TempDir()
	src := filepath.Join(dir, "app.json")
	testutil.CreateTestFile(t, src, []byte(`{"title":"Welcome","count":3}`))

	if _, _, err := run(t, context.Background(), cfgPath, "file", src, "fr", "--format", "yaml"); err != nil {
		t.Fatalf("file error = %v", err)
	}
	out := filepath.Join(dir, "app.fr.yaml")
	testutil.AssertFileContains(t, out, "title: Bienvenue")
	testutil.AssertFileContains(t, out, "count: 3")

	if _, _, err := run(t, context.Background(), cfgPath, "file", src, "fr"); err != nil {
		t.Fatalf("file error = %v", err)
	}
	testutil.AssertFileContains(t, filepath.Join(dir, "app.fr.json"), `"title": "Bienvenue"`)

	if _, _, err := run(t, context.Background(), cfgPath, "file", src, "fr", "--format", "ini"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestSyncCommand(t *testing.T) {
	cfgPath := setupCLI(t, testutil.NewMockBackend("libre"))
	locales := t.TempDir()
	testutil.CreateLocaleTree(t, locales, "en", map[string]string{
		"app.json":  `{"hello":"Hello"}`,
		"menu.yaml": "file: File\n",
	})

	stdout, _, err := run(t, context.Background(), cfgPath, "sync", "--path", locales, "--source", "en", "--target", "de,fr")
	if err != nil {
		t.Fatalf("sync error = %v", err)
	}
	testutil.AssertFileContains(t, filepath.Join(locales, "de", "app.json"), "de:Hello")
	testutil.AssertFileContains(t, filepath.Join(locales, "fr", "app.json"), "fr:Hello")
	testutil.AssertFileExists(t, filepath.Join(locales, "fr", "menu.yaml"))
	if !strings.Contains(stdout, "Translated: 4, skipped: 0, failed: 0") {
		t.Errorf("summary missing:\n%s", stdout)
	}

	stdout, _, _ = run(t, context.Background(), cfgPath, "sync", "--path", locales, "--source", "en", "--target", "de")
	if !strings.Contains(stdout, "Translated: 0, skipped: 2, failed: 0") {
		t.Errorf("existing files should be skipped:\n%s", stdout)
	}

	testutil.CreateTestFile(t, filepath.Join(locales, "en", "broken.json"), []byte(`{`))
	if _, _, err := run(t, context.Background(), cfgPath, "sync", "--path", locales, "--source", "en", "--target", "it"); err == nil {
		t.Error("expected an error when a file fails")
	}
}

func TestDetectCommand(t *testing.T) {
	mock := testutil.NewMockBackend("libre")
	mock.Detected = "fr"
	cfgPath := setupCLI(t, mock)

	stdout, _, err := run(t, context.Background(), cfgPath, "detect", "Bonjour")
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}
	if strings.TrimSpace(stdout) != "fr" {
		t.Errorf("detect output = %q, want fr", stdout)
	}
}

func TestClearCacheAndStatsCommands(t *testing.T) {
	mock := testutil.NewMockBackend("libre")
	cfgPath := setupCLI(t, mock)
	ctx := context.Background()

	run(t, ctx, cfgPath, "translate", "Hello")
	run(t, ctx, cfgPath, "translate", "Hello")

	stdout, _, err := run(t, ctx, cfgPath, "stats")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	for _, want := range []string{"Total requests: 2", "Hit rate:       50.00%"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stats missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = run(t, ctx, cfgPath, "clear-cache")
	if err != nil {
		t.Fatalf("clear-cache error = %v", err)
	}
	if !strings.Contains(stdout, "Translation cache cleared successfully") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	run(t, ctx, cfgPath, "translate", "Hello")
	if mock.CallCount() != 2 {
		t.Errorf("backend called %d times after flush, want 2", mock.CallCount())
	}
}

func TestTestBackendsCommand(t *testing.T) {
	echo := testutil.NewMockBackend("lingva")
	echo.Translations = map[string]string{"Hello, world!": "Hello, world!"}
	cfgPath := setupCLI(t, testutil.NewMockBackend("libre"), echo)

	stdout, _, err := run(t, context.Background(), cfgPath, "test-backends", "--service", "libre")
	if err != nil {
		t.Fatalf("test-backends error = %v", err)
	}
	if !strings.Contains(stdout, `Translation: "es:Hello, world!"`) {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	if _, _, err := run(t, context.Background(), cfgPath, "test-backends", "--service", "lingva"); err == nil {
		t.Error("an echoing backend should not count as working")
	}
}

func TestServeCommand(t *testing.T) {
	cfgPath := setupCLI(t, testutil.NewMockBackend("libre"))
	watched := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	stdout, _, err := run(t, ctx, cfgPath, "serve", "--addr", "127.0.0.1:0", "--watch", watched)
	if err != nil {
		t.Fatalf("serve error = %v", err)
	}
	if !strings.Contains(stdout, "Listening on 127.0.0.1:0") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
	testutil.CreateTestFile(t, cfgPath, []byte("target_lang: fr\nservices:\n  openai:\n    api_key: test-key\n"))

	_, stderr := testutil.CaptureOutput(t, func() {
		InitConfig(cfgPath)
	})

	if !strings.Contains(stderr, "Using config file: "+cfgPath) {
		t.Errorf("expected config file notice, got %q", stderr)
	}
	if viper.GetString("target_lang") != "fr" {
		t.Errorf("target_lang = %q, want fr", viper.GetString("target_lang"))
	}
	if viper.GetString("services.openai.api_key") != "test-key" {
		t.Errorf("services.openai.api_key = %q, want test-key", viper.GetString("services.openai.api_key"))
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	cmd := newServeCommand(flags)
	cmd.Flags().Set("addr", "127.0.0.1:9999")
	cmd.Flags().Set("watch", "locales,themes")

	cfg, _, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("server.addr = %q, want 127.0.0.1:9999", cfg.Server.Addr)
	}
	if len(cfg.Cache.WatchPaths) != 2 || cfg.Cache.WatchPaths[1] != "themes" {
		t.Errorf("cache.watch_paths = %v", cfg.Cache.WatchPaths)
	}
}

func TestLoadConfigVerbose(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	flags.Verbose = true

	cfg, logger, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("logger should be at debug level")
	}
}

func TestCommandContext(t *testing.T) {
	if commandContext(&cobra.Command{}) == nil {
		t.Error("expected a background context for a command without one")
	}
}
