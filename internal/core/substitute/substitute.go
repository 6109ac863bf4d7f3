// Package substitute rewrites placeholder and redaction tokens inside
// cleaned conversations into stable identifiers used by later augmentation
// steps.
package substitute

import (
	"strings"

	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
)

const (
	// CharacterToken marks where the character's own name belongs.
	CharacterToken = "{{char}}"
	// UserToken is the stable placeholder all redaction markers collapse
	// into; augmentation swaps it for a generated persona later.
	UserToken = "{{user}}"
)

// redactionTokens is the closed set of markers an upstream anonymization
// pass leaves behind. All of them mean "the user's name stood here".
var redactionTokens = []string{
	"[NAME_IN_MESSAGE_REDACTED]",
	"[REDACTED]",
	"[FIRST_NAME_REDACTED]",
	"[USERNAME_REDACTED]",
	"[NAME_REDACTED]",
}

// Names replaces every occurrence of CharacterToken with characterName and
// every redaction marker with UserToken, across all turns. Replacement is
// literal and exhaustive; the token sets are disjoint so ordering between
// the two substitutions does not matter.
func Names(conversation []domain.Turn, characterName string) []domain.Turn {
	for i := range conversation {
		msg := strings.ReplaceAll(conversation[i].Message, CharacterToken, characterName)
		for _, token := range redactionTokens {
			msg = strings.ReplaceAll(msg, token, UserToken)
		}
		conversation[i].Message = msg
	}
	return conversation
}
