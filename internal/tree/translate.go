package tree

import (
	"context"

	"codeberg.org/snonux/lingochain/internal/translator"
)

// BatchTranslator translates a list of texts, keeping their order
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string, progress translator.ProgressFunc) []string
}

// Translator translates whole trees
type Translator struct {
	batch BatchTranslator
}

// NewTranslator creates a tree translator on top of a batch translator
func NewTranslator(batch BatchTranslator) *Translator {
	return &Translator{batch: batch}
}

// TranslateTree returns a translated copy of t with the same shape.
// onProgress is called once per string leaf.
func (tr *Translator) TranslateTree(ctx context.Context, t *Tree, targetLang, sourceLang string, onProgress translator.ProgressFunc) (*Tree, error) {
	if t == nil {
		return nil, &InvalidInputError{Reason: "nil tree"}
	}

	texts := Texts(t)
	if len(texts) == 0 {
		return Rebuild(t, nil)
	}

	translations := tr.batch.TranslateBatch(ctx, texts, targetLang, sourceLang, onProgress)
	return Rebuild(t, translations)
}
