package normalizer

import (
	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// ChainNormalizer applies an ordered list of rules to a message.
type ChainNormalizer struct {
	rules []Rule
}

// NewChainNormalizer creates a normalizer from an explicit rule list.
func NewChainNormalizer(rules []Rule) *ChainNormalizer {
	return &ChainNormalizer{rules: rules}
}

// NewDefaultNormalizer creates the standard message normalizer: the full
// default rule chain around an encoding fixer with ligature and
// character-width fixing disabled, so intentional typography survives.
func NewDefaultNormalizer() ports.Normalizer {
	return NewChainNormalizer(DefaultRules(NewFixer(FixerConfig{
		FixLatinLigatures: false,
		FixCharacterWidth: false,
	})))
}

// Normalize runs every rule in order and returns the cleaned message.
func (n *ChainNormalizer) Normalize(text string) string {
	for _, rule := range n.rules {
		text = rule.Apply(text)
	}
	return text
}

// Rules exposes the chain for per-rule inspection and testing.
func (n *ChainNormalizer) Rules() []Rule {
	return n.rules
}
