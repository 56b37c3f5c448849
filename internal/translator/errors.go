package translator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"codeberg.org/snonux/lingochain/internal/backend"
)

// errEmptyResult marks a backend that answered without a translation
var errEmptyResult = errors.New("empty translation")

// AllBackendsFailed reports a call where no backend produced a translation.
// It is only ever handed out inside a Result, never returned as an error.
type AllBackendsFailed struct {
	// Errors maps each attempted backend to its failure
	Errors map[string]error
}

func (e *AllBackendsFailed) Error() string {
	if len(e.Errors) == 0 {
		return "all translation backends failed: no enabled backend in the fallback chain"
	}

	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		err := e.Errors[name]
		// backend errors already carry the backend name
		var be *backend.Error
		if errors.As(err, &be) && be.Backend == name {
			parts = append(parts, err.Error())
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", name, err))
	}
	return "all translation backends failed: " + strings.Join(parts, "; ")
}
