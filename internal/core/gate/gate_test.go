package gate

import (
	"context"
	"strings"
	"testing"

	"github.com/TearGosling/augmenting-conv-data/internal/adapters/logger"
	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
)

// fakeDetector classifies by a marker prefix so tests control every turn:
// "xx:..." is foreign, "??..." fails classification, everything else is
// English.
type fakeDetector struct{}

func (fakeDetector) Detect(text string) (string, bool) {
	switch {
	case strings.HasPrefix(text, "??"):
		return "", false
	case strings.HasPrefix(text, "xx:"):
		return "xx", true
	default:
		return "en", true
	}
}

func turns(messages ...string) []domain.Turn {
	out := make([]domain.Turn, len(messages))
	for i, m := range messages {
		out[i] = domain.Turn{Message: m, IsHuman: i%2 == 0}
	}
	return out
}

func newTestGate(t *testing.T, threshold float64) *Gate {
	t.Helper()
	g, err := New(Config{Threshold: threshold}, fakeDetector{}, logger.Nop{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		threshold    float64
		conversation []domain.Turn
		accepted     bool
		foreignTurns int
	}{
		{
			name:         "All target language",
			threshold:    0.2,
			conversation: turns("hello", "hi", "how are you"),
			accepted:     true,
			foreignTurns: 0,
		},
		{
			name:         "Ratio exactly at threshold is accepted",
			threshold:    0.25,
			conversation: turns("a", "b", "c", "xx:d"),
			accepted:     true,
			foreignTurns: 1,
		},
		{
			name:         "Ratio just above threshold is rejected",
			threshold:    0.24,
			conversation: turns("a", "b", "c", "xx:d"),
			accepted:     false,
			foreignTurns: 1,
		},
		{
			name:         "Zero threshold rejects a single foreign turn",
			threshold:    0,
			conversation: turns("a", "xx:b"),
			accepted:     false,
			foreignTurns: 1,
		},
		{
			name:         "Zero threshold accepts a clean conversation",
			threshold:    0,
			conversation: turns("a", "b"),
			accepted:     true,
			foreignTurns: 0,
		},
		{
			name:         "Failed classification counts as foreign",
			threshold:    0.24,
			conversation: turns("a", "b", "c", "??d"),
			accepted:     false,
			foreignTurns: 1,
		},
		{
			name:         "Threshold one accepts everything",
			threshold:    1,
			conversation: turns("xx:a", "xx:b"),
			accepted:     true,
			foreignTurns: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGate(t, tc.threshold)
			result := g.Evaluate(ctx, tc.conversation)

			if result.Accepted != tc.accepted {
				t.Errorf("expected accepted=%v, got %v (ratio %v, threshold %v)",
					tc.accepted, result.Accepted, result.ForeignRatio, result.Threshold)
			}
			if result.ForeignTurns != tc.foreignTurns {
				t.Errorf("expected %d foreign turns, got %d", tc.foreignTurns, result.ForeignTurns)
			}
			if result.TotalTurns != len(tc.conversation) {
				t.Errorf("expected %d total turns, got %d", len(tc.conversation), result.TotalTurns)
			}
		})
	}
}

func TestEvaluateEmptyConversation(t *testing.T) {
	g := newTestGate(t, 0)

	result := g.Evaluate(context.Background(), nil)
	if !result.Accepted {
		t.Error("empty conversation should be accepted")
	}
	if result.ForeignRatio != 0 {
		t.Errorf("expected zero ratio, got %v", result.ForeignRatio)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	g := newTestGate(t, 0.5)
	conversation := turns("a", "xx:b", "??c", "d")

	first := g.Evaluate(context.Background(), conversation)
	for i := 0; i < 10; i++ {
		if got := g.Evaluate(context.Background(), conversation); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestEvaluateCancelledContext(t *testing.T) {
	g := newTestGate(t, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Every turn counts as foreign once the context is gone.
	result := g.Evaluate(ctx, turns("a", "b"))
	if result.Accepted {
		t.Error("expected rejection with cancelled context")
	}
	if result.ForeignTurns != 2 {
		t.Errorf("expected 2 foreign turns, got %d", result.ForeignTurns)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{"Zero", 0, false},
		{"One", 1, false},
		{"Middle", 0.2, false},
		{"Negative", -0.1, true},
		{"Above one", 1.1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Config{Threshold: tc.threshold}.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewDefaultsTargetLanguage(t *testing.T) {
	g, err := New(Config{Threshold: 0.2}, fakeDetector{}, logger.Nop{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.config.TargetLanguage != DefaultTargetLanguage {
		t.Errorf("expected default target language %q, got %q",
			DefaultTargetLanguage, g.config.TargetLanguage)
	}
}
