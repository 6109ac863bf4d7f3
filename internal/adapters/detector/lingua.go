package detector

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// The underlying model is built exactly once, before the first
// classification, and never mutated afterwards. lingua carries no random
// state, so identical input always produces identical decisions across runs.
var (
	buildOnce sync.Once
	shared    lingua.LanguageDetector
)

func sharedDetector() lingua.LanguageDetector {
	buildOnce.Do(func() {
		shared = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return shared
}

// Lingua adapts the lingua-go language identifier to ports.LanguageDetector.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua returns a detector backed by the shared lingua model. The first
// call pays the model-loading cost; see the warmup package.
func NewLingua() ports.LanguageDetector {
	return &Lingua{detector: sharedDetector()}
}

// Detect classifies text and returns its ISO 639-1 code in lower case.
// ok is false when lingua cannot determine a language, e.g. for very short
// or purely symbolic messages.
func (d *Lingua) Detect(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
