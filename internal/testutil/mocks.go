package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/lingochain/internal/backend"
)

// MockBackend is a scriptable backend.Backend
type MockBackend struct {
	BackendName string
	Disabled    bool

	// Translations maps input text to its translation. Texts not listed
	// translate to "<target>:<text>".
	Translations map[string]string

	// Errors maps input text to a failure
	Errors map[string]error

	// Err fails every Translate call when set
	Err error

	// Detected is returned by DetectLanguage, DetectErr fails it
	Detected  string
	DetectErr error

	Languages []string

	// Delay is slept before answering
	Delay time.Duration

	mu          sync.Mutex
	calls       []string
	detectCalls int
}

// NewMockBackend creates an enabled mock called name
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{BackendName: name}
}

func (m *MockBackend) Name() string  { return m.BackendName }
func (m *MockBackend) Enabled() bool { return !m.Disabled }

// Translate records the call and answers from the script
func (m *MockBackend) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("Translate: %s (%s->%s)", text, sourceLang, targetLang))
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", &backend.Error{Backend: m.BackendName, Err: ctx.Err()}
		case <-time.After(m.Delay):
		}
	}

	if m.Err != nil {
		return "", &backend.Error{Backend: m.BackendName, Err: m.Err}
	}
	if err, ok := m.Errors[text]; ok {
		return "", &backend.Error{Backend: m.BackendName, Err: err}
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return targetLang + ":" + text, nil
}

// DetectLanguage records the call and returns Detected
func (m *MockBackend) DetectLanguage(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.detectCalls++
	m.mu.Unlock()

	if m.DetectErr != nil {
		return "", &backend.Error{Backend: m.BackendName, Err: m.DetectErr}
	}
	return m.Detected, nil
}

func (m *MockBackend) SupportedLanguages(ctx context.Context) []string {
	return m.Languages
}

// Calls returns the recorded Translate calls
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the number of Translate calls
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// DetectCalls returns the number of DetectLanguage calls
func (m *MockBackend) DetectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detectCalls
}

// Backends turns mocks into the map the orchestrator is built from
func Backends(mocks ...*MockBackend) map[string]backend.Backend {
	out := make(map[string]backend.Backend, len(mocks))
	for _, m := range mocks {
		out[m.BackendName] = m
	}
	return out
}

// ErrStoreDown is returned by FailingStore
var ErrStoreDown = errors.New("connection refused")

// FailingStore is a cache.Store whose every operation fails
type FailingStore struct{}

func (FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, fmt.Errorf("get %s: %w", key, ErrStoreDown)
}

func (FailingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return fmt.Errorf("put %s: %w", key, ErrStoreDown)
}

func (FailingStore) Forget(ctx context.Context, key string) error {
	return fmt.Errorf("forget %s: %w", key, ErrStoreDown)
}

func (FailingStore) Flush(ctx context.Context) error {
	return fmt.Errorf("flush: %w", ErrStoreDown)
}
