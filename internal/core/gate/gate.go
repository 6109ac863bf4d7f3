package gate

import (
	"context"
	"errors"

	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// DefaultTargetLanguage is the ISO 639-1 code conversations are expected
// to be written in.
const DefaultTargetLanguage = "en"

// Config holds configuration for the language gate.
type Config struct {
	// Threshold is the largest tolerated ratio of foreign turns to total
	// turns, in [0, 1]. A conversation is rejected when its ratio strictly
	// exceeds the threshold; exactly at the threshold it is accepted.
	Threshold float64
	// TargetLanguage is the lower-case ISO 639-1 code of the wanted
	// language. Empty means DefaultTargetLanguage.
	TargetLanguage string
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("threshold must be between 0 and 1")
	}
	return nil
}

// Gate decides whether a conversation is predominantly in the target
// language.
type Gate struct {
	config   Config
	detector ports.LanguageDetector
	logger   ports.Logger
}

// New creates a language gate.
func New(config Config, detector ports.LanguageDetector, logger ports.Logger) (*Gate, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.TargetLanguage == "" {
		config.TargetLanguage = DefaultTargetLanguage
	}
	return &Gate{
		config:   config,
		detector: detector,
		logger:   logger,
	}, nil
}

// Evaluate classifies every turn and returns the accept/reject decision
// with the underlying counts. Turns are independent; this is a single
// O(turns) pass.
//
// A turn whose classification fails is counted as foreign: an uncertain
// conversation should lean towards rejection, never slip through because
// the classifier gave up.
//
// An empty conversation holds no disqualifying evidence and is accepted;
// its ratio is reported as 0 so no division by zero can occur.
func (g *Gate) Evaluate(ctx context.Context, conversation []domain.Turn) domain.GateResult {
	result := domain.GateResult{
		Accepted:   true,
		TotalTurns: len(conversation),
		Threshold:  g.config.Threshold,
	}
	if len(conversation) == 0 {
		g.logger.Debug("Empty conversation, accepting")
		return result
	}

	for _, turn := range conversation {
		select {
		case <-ctx.Done():
			// Treat unfinished classification like failed classification.
			result.ForeignTurns++
			continue
		default:
		}
		code, ok := g.detector.Detect(turn.Message)
		if !ok || code != g.config.TargetLanguage {
			result.ForeignTurns++
		}
	}

	result.ForeignRatio = float64(result.ForeignTurns) / float64(result.TotalTurns)
	result.Accepted = result.ForeignRatio <= g.config.Threshold

	g.logger.Debug("Evaluated language gate",
		"total_turns", result.TotalTurns,
		"foreign_turns", result.ForeignTurns,
		"foreign_ratio", result.ForeignRatio,
		"threshold", result.Threshold,
		"accepted", result.Accepted,
	)

	return result
}
