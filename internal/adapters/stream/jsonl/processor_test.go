package jsonl

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TearGosling/augmenting-conv-data/internal/adapters/logger"
	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
)

// fakeCleaner accepts every conversation whose first turn does not start
// with "reject", and upper-cases messages so the write path is observable.
type fakeCleaner struct{}

func (fakeCleaner) Clean(_ context.Context, conversation []domain.Turn, _ string) domain.Result {
	if len(conversation) > 0 && strings.HasPrefix(conversation[0].Message, "reject") {
		return domain.Result{
			Accepted: false,
			Gate:     domain.GateResult{TotalTurns: len(conversation), ForeignTurns: len(conversation)},
		}
	}
	cleaned := make([]domain.Turn, len(conversation))
	for i, turn := range conversation {
		cleaned[i] = domain.Turn{Message: strings.ToUpper(turn.Message), IsHuman: turn.IsHuman}
	}
	return domain.Result{Accepted: true, Conversation: cleaned}
}

func line(msg string) string {
	return fmt.Sprintf(`{"conversation":[{"message":%q,"is_human":true}],"bot_name":"Mira"}`, msg)
}

func TestProcessSequential(t *testing.T) {
	input := strings.Join([]string{
		line("first"),
		line("reject me"),
		`{"this is": not a record`,
		"",
		line("second"),
	}, "\n")

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.RecordsIn) // the empty line is not a record
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.Malformed)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, line("FIRST"), lines[0])
	assert.JSONEq(t, line("SECOND"), lines[1])
}

func TestProcessParallelKeepsInputOrder(t *testing.T) {
	const n = 100
	var input strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&input,
			`{"conversation":[{"message":"msg %04d","is_human":true}],"bot_name":"Mira","seq":%d}`+"\n",
			i, i)
	}

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{Workers: 4})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input.String()), &out)
	require.NoError(t, err)

	assert.Equal(t, n, stats.RecordsIn)
	assert.Equal(t, n, stats.Written)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, n)
	for i, l := range lines {
		assert.Contains(t, l, fmt.Sprintf(`MSG %04d`, i),
			"record %d out of order", i)
	}
}

func TestProcessParallelCountsMixedOutcomes(t *testing.T) {
	input := strings.Join([]string{
		line("a"),
		line("reject b"),
		"garbage",
		line("c"),
		line("reject d"),
	}, "\n")

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{Workers: 3})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.RecordsIn)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 1, stats.Malformed)
}

func TestProcessEmptyInput(t *testing.T) {
	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Equal(t, Stats{Duration: stats.Duration}, stats)
	assert.Zero(t, out.Len())
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{})
	var out bytes.Buffer
	_, err := p.Process(ctx, strings.NewReader(line("a")+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessSkipsOverlongLine(t *testing.T) {
	input := strings.Join([]string{
		line("before"),
		line(strings.Repeat("x", 2048)),
		line("after"),
	}, "\n")

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{MaxLineBytes: 1024})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	// The over-long record is dropped like any other malformed line; the
	// records on either side of it still go through.
	assert.Equal(t, 3, stats.RecordsIn)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Malformed)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, line("BEFORE"), lines[0])
	assert.JSONEq(t, line("AFTER"), lines[1])
}

func TestProcessSkipsOverlongLineParallel(t *testing.T) {
	input := strings.Join([]string{
		line("before"),
		line(strings.Repeat("x", 4096)),
		line("after"),
	}, "\n")

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{Workers: 2, MaxLineBytes: 1024})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RecordsIn)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Malformed)
}

func TestProcessLineExactlyAtLimit(t *testing.T) {
	exact := line(strings.Repeat("x", 1024-len(line(""))))
	require.Len(t, exact, 1024)

	p := NewProcessor(fakeCleaner{}, logger.Nop{}, ProcessingConfig{MaxLineBytes: 1024})
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(exact+"\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Written)
	assert.Zero(t, stats.Malformed)
}
