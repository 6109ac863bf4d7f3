// Package jsonl reads line-delimited JSON records, runs each one through
// the conversation cleaner, and writes the accepted records back out.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TearGosling/augmenting-conv-data/internal/pool"
	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// Constants for record processing.
const (
	// DefaultMaxLineBytes bounds a single record line. Role-play
	// conversations run long, so the bound is generous.
	DefaultMaxLineBytes = 16 * 1024 * 1024

	// DefaultEncodeBufferSize is the starting capacity of pooled encode
	// buffers.
	DefaultEncodeBufferSize = 64 * 1024

	// batchMultiplier sets how many records are in flight per worker in
	// parallel mode.
	batchMultiplier = 8
)

// Stats summarizes one batch run. Every input line lands in exactly one of
// Written, Rejected, or Malformed.
type Stats struct {
	RecordsIn int
	Written   int
	Rejected  int
	Malformed int
	Duration  time.Duration
}

// ProcessingConfig defines configuration for record processing.
type ProcessingConfig struct {
	// Workers is the number of records cleaned concurrently. Values below
	// 2 select the sequential path. Output order matches input order in
	// both modes.
	Workers int
	// MaxLineBytes bounds a single input line. A longer line is skipped
	// and counted as malformed; it never aborts the batch.
	MaxLineBytes int
}

// Processor streams records through a conversation cleaner.
type Processor struct {
	cleaner ports.ConversationCleaner
	logger  ports.Logger
	buffers *pool.BufferPool

	workers      int
	maxLineBytes int
}

// NewProcessor creates a record processor.
func NewProcessor(cleaner ports.ConversationCleaner, logger ports.Logger, config ProcessingConfig) *Processor {
	if config.MaxLineBytes <= 0 {
		config.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Processor{
		cleaner:      cleaner,
		logger:       logger,
		buffers:      pool.NewBufferPool(DefaultEncodeBufferSize),
		workers:      config.Workers,
		maxLineBytes: config.MaxLineBytes,
	}
}

// Process reads records from reader one line at a time, cleans each, and
// writes accepted ones to writer. A malformed or over-long line is counted,
// logged, and skipped; the batch always runs to the end of the input. The
// only error returns are I/O failures and context cancellation.
func (p *Processor) Process(ctx context.Context, reader io.Reader, writer io.Writer) (Stats, error) {
	start := time.Now()

	lines := newLineReader(reader, p.maxLineBytes)
	out := bufio.NewWriter(writer)

	var stats Stats
	var err error
	if p.workers > 1 {
		err = p.processParallel(ctx, lines, out, &stats)
	} else {
		err = p.processSequential(ctx, lines, out, &stats)
	}
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}

	stats.Duration = time.Since(start)
	p.logger.Info("Batch processing completed",
		"records_in", stats.RecordsIn,
		"written", stats.Written,
		"rejected", stats.Rejected,
		"malformed", stats.Malformed,
		"duration", stats.Duration,
	)
	return stats, err
}

func (p *Processor) processSequential(ctx context.Context, lines *lineReader, out *bufio.Writer, stats *Stats) error {
	for {
		line, tooLong, err := lines.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if tooLong {
			p.skipOverlong(stats)
			continue
		}
		if len(line) == 0 {
			continue
		}
		stats.RecordsIn++

		encoded, outcome := p.cleanLine(ctx, line)
		p.count(stats, outcome)
		if encoded == nil {
			continue
		}
		_, err = out.Write(encoded.Bytes())
		p.buffers.Put(encoded)
		if err != nil {
			return err
		}
	}
}

// processParallel cleans records in input-order batches: each batch is
// cleaned concurrently, then written out in order before the next batch is
// read. Records are independent, so per-batch fan-out changes no decision.
func (p *Processor) processParallel(ctx context.Context, lr *lineReader, out *bufio.Writer, stats *Stats) error {
	batchSize := p.workers * batchMultiplier
	lines := make([][]byte, 0, batchSize)
	for {
		lines = lines[:0]
		for len(lines) < batchSize {
			raw, tooLong, err := lr.next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if tooLong {
				p.skipOverlong(stats)
				continue
			}
			if len(raw) == 0 {
				continue
			}
			line := make([]byte, len(raw))
			copy(line, raw)
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			return nil
		}
		stats.RecordsIn += len(lines)

		encoded := make([]*encodedRecord, len(lines))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i, line := range lines {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				buf, outcome := p.cleanLine(gctx, line)
				encoded[i] = &encodedRecord{buf: buf, outcome: outcome}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, rec := range encoded {
			p.count(stats, rec.outcome)
			if rec.buf == nil {
				continue
			}
			_, err := out.Write(rec.buf.Bytes())
			p.buffers.Put(rec.buf)
			if err != nil {
				return err
			}
		}
	}
}

func (p *Processor) skipOverlong(stats *Stats) {
	stats.RecordsIn++
	p.count(stats, outcomeMalformed)
	p.logger.Warn("Skipping record over the line size limit",
		"max_line_bytes", p.maxLineBytes,
	)
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeRejected
	outcomeMalformed
)

type encodedRecord struct {
	buf     *bytes.Buffer
	outcome outcome
}

// cleanLine decodes, cleans, and re-encodes one record. The returned buffer
// is nil unless the record should be written; callers must return non-nil
// buffers to the pool.
func (p *Processor) cleanLine(ctx context.Context, line []byte) (*bytes.Buffer, outcome) {
	var record Record
	if err := json.Unmarshal(line, &record); err != nil {
		p.logger.Warn("Skipping malformed record", "error", err)
		return nil, outcomeMalformed
	}

	result := p.cleaner.Clean(ctx, record.Conversation, record.BotName)
	if !result.Accepted {
		return nil, outcomeRejected
	}
	record.Conversation = result.Conversation

	buf := p.buffers.Get()
	if err := json.NewEncoder(buf).Encode(record); err != nil {
		p.buffers.Put(buf)
		p.logger.Warn("Skipping record that failed to encode", "error", err)
		return nil, outcomeMalformed
	}
	return buf, outcomeWritten
}

func (p *Processor) count(stats *Stats, o outcome) {
	switch o {
	case outcomeWritten:
		stats.Written++
	case outcomeRejected:
		stats.Rejected++
	case outcomeMalformed:
		stats.Malformed++
	}
}

// lineReader yields input lines without their trailing newline. A line
// longer than max is consumed to its end and reported with tooLong so the
// caller can resynchronize at the next line instead of aborting the batch
// the way bufio.Scanner's ErrTooLong would.
type lineReader struct {
	r   *bufio.Reader
	max int
	buf []byte
}

func newLineReader(r io.Reader, max int) *lineReader {
	size := 64 * 1024
	if max < size {
		size = max
	}
	return &lineReader{r: bufio.NewReaderSize(r, size), max: max}
}

// next returns the next line. At the end of the input it returns io.EOF;
// a tooLong line comes back empty with tooLong set.
func (lr *lineReader) next() ([]byte, bool, error) {
	lr.buf = lr.buf[:0]
	overflow := false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		if !overflow {
			lr.buf = append(lr.buf, chunk...)
			// One byte of slack for the newline itself, so a line of
			// exactly max content bytes still passes.
			if len(lr.buf) > lr.max+1 {
				overflow = true
			}
		}
		switch err {
		case bufio.ErrBufferFull:
			continue
		case nil, io.EOF:
			if err == io.EOF && len(lr.buf) == 0 {
				return nil, false, io.EOF
			}
			line := dropLineEnding(lr.buf)
			if overflow || len(line) > lr.max {
				return nil, true, nil
			}
			return line, false, nil
		default:
			return nil, false, err
		}
	}
}

func dropLineEnding(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
