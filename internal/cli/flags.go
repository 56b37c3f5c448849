package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile string
	Verbose bool

	// Shared by the translation commands
	SourceLang string
	TargetLang string
	Service    string
	Output     string

	// batch
	BatchFile string

	// file
	Format string

	// sync
	Path    string
	Targets []string
	Force   bool
	Archive bool

	// test-backends
	Text string

	// clear-cache
	Analytics bool

	// serve
	Addr       string
	WatchPaths []string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Path: "./locales",
		Text: "Hello, world!",
	}
}
