package backend

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "en", want: "en"},
		{in: "EN", want: "en"},
		{in: "en-US", want: "en"},
		{in: " pt_BR ", want: "pt"},
		{in: "", want: ""},
		{in: "not a language", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCode(tt.in); got != tt.want {
				t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("lingva", cause)

	if !errors.Is(err, cause) {
		t.Error("Error does not unwrap to its cause")
	}
	if err.Error() != "lingva: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if wrap("lingva", nil) != nil {
		t.Error("wrap(nil) must be nil")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("deepl", Config{}); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestBuild(t *testing.T) {
	backends, err := Build(DefaultConfigs(), BreakerConfig{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(backends) != len(Names()) {
		t.Errorf("built %d backends, want %d", len(backends), len(Names()))
	}

	tests := map[string]bool{
		"libre":    true,
		"lingva":   true,
		"mymemory": true,
		"google":   false,
		"argos":    false,
		"openai":   false,
	}
	for name, enabled := range tests {
		b, ok := backends[name]
		if !ok {
			t.Errorf("backend %q missing", name)
			continue
		}
		if b.Name() != name {
			t.Errorf("Name() = %q, want %q", b.Name(), name)
		}
		if b.Enabled() != enabled {
			t.Errorf("%s Enabled() = %v, want %v", name, b.Enabled(), enabled)
		}
	}
}

func TestBuildWrapsInBreaker(t *testing.T) {
	backends, err := Build(map[string]Config{"libre": {Enabled: true}}, BreakerConfig{Enabled: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := backends["libre"].(*breakerBackend); !ok {
		t.Errorf("expected a breaker wrapped backend, got %T", backends["libre"])
	}
}

// flaky fails until healthy is set
type flaky struct {
	calls   int
	healthy bool
}

func (f *flaky) Name() string  { return "flaky" }
func (f *flaky) Enabled() bool { return true }
func (f *flaky) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	f.calls++
	if !f.healthy {
		return "", wrap("flaky", errors.New("503"))
	}
	return "ok", nil
}
func (f *flaky) DetectLanguage(ctx context.Context, text string) (string, error) { return "", nil }
func (f *flaky) SupportedLanguages(ctx context.Context) []string                 { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flaky{}
	b := WithBreaker(inner, BreakerConfig{Enabled: true, MaxFailures: 2, OpenTimeout: 50 * time.Millisecond, HalfOpenRequests: 1})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := b.Translate(ctx, "x", "de", "en"); errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d rejected before the breaker tripped", i)
		}
	}

	_, err := b.Translate(ctx, "x", "de", "en")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	var be *Error
	if !errors.As(err, &be) || be.Backend != "flaky" {
		t.Errorf("open breaker error is not a *Error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
	if state := b.(*breakerBackend).State(); state != "open" {
		t.Errorf("State() = %q, want open", state)
	}

	// After the open timeout a trial call goes through and closes the circuit
	inner.healthy = true
	time.Sleep(60 * time.Millisecond)
	if got, err := b.Translate(ctx, "x", "de", "en"); err != nil || got != "ok" {
		t.Errorf("trial call = %q, %v", got, err)
	}
}

func TestWithBreakerDisabledReturnsSameBackend(t *testing.T) {
	inner := &flaky{}
	if got := WithBreaker(inner, BreakerConfig{}); got != Backend(inner) {
		t.Error("disabled breaker must not wrap")
	}
}
