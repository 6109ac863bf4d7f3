// Package cleanse orchestrates the conversation-cleaning pipeline:
// language gate, per-turn normalization, then name substitution.
package cleanse

import (
	"context"

	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
	"github.com/TearGosling/augmenting-conv-data/internal/core/gate"
	"github.com/TearGosling/augmenting-conv-data/internal/core/substitute"
	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// Cleaner runs a conversation through the full pipeline. The gate runs
// first: rejecting on the raw turns is cheap compared to normalizing them.
type Cleaner struct {
	gate       *gate.Gate
	normalizer ports.Normalizer
	logger     ports.Logger
}

// New creates a conversation cleaner.
func New(g *gate.Gate, normalizer ports.Normalizer, logger ports.Logger) *Cleaner {
	return &Cleaner{
		gate:       g,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Clean gates, normalizes, and substitutes one conversation. A rejected
// conversation is an expected outcome, not an error: the result carries
// Accepted == false, a nil Conversation, and the gate numbers so the caller
// can report the drop.
//
// The input slice is not modified; cleaned turns are returned in a copy.
func (c *Cleaner) Clean(ctx context.Context, conversation []domain.Turn, characterName string) domain.Result {
	details := make(map[string]interface{})
	details["character_name"] = characterName

	gateResult := c.gate.Evaluate(ctx, conversation)
	if !gateResult.Accepted {
		c.logger.Info("Conversation rejected by language gate",
			"total_turns", gateResult.TotalTurns,
			"foreign_turns", gateResult.ForeignTurns,
			"foreign_ratio", gateResult.ForeignRatio,
			"threshold", gateResult.Threshold,
		)
		return domain.Result{
			Name:     "conversation_cleaning",
			Accepted: false,
			Gate:     gateResult,
			Details:  details,
		}
	}

	cleaned := make([]domain.Turn, len(conversation))
	copy(cleaned, conversation)
	for i := range cleaned {
		cleaned[i].Message = c.normalizer.Normalize(cleaned[i].Message)
	}

	cleaned = substitute.Names(cleaned, characterName)

	c.logger.Debug("Conversation cleaned",
		"turns", len(cleaned),
		"character_name", characterName,
	)

	return domain.Result{
		Name:         "conversation_cleaning",
		Accepted:     true,
		Conversation: cleaned,
		Gate:         gateResult,
		Details:      details,
	}
}
