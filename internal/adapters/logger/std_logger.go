package logger

import (
	"os"

	"github.com/baditaflorin/l"

	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// StdLogger adapts an l.Logger to the ports.Logger interface.
type StdLogger struct {
	logger l.Logger
}

// NewStdLogger creates a logger adapter suitable for batch runs: JSON
// output on stdout with asynchronous writes so logging does not stall the
// cleaning workers.
func NewStdLogger() (ports.Logger, error) {
	lg, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output:      os.Stdout,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  256 * 1024,
		MaxFileSize: 10 * 1024 * 1024,
		MaxBackups:  3,
		AddSource:   false,
		Metrics:     false,
	})
	if err != nil {
		return nil, err
	}
	return &StdLogger{logger: lg}, nil
}

// NewCustomStdLogger creates a logger adapter from an explicit l configuration.
func NewCustomStdLogger(config l.Config) (ports.Logger, error) {
	lg, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, err
	}
	return &StdLogger{logger: lg}, nil
}

// FromExisting wraps an already-configured l.Logger.
func FromExisting(lg l.Logger) ports.Logger {
	return &StdLogger{logger: lg}
}

func (s *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logger.Debug(msg, keysAndValues...)
}

func (s *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logger.Info(msg, keysAndValues...)
}

func (s *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logger.Warn(msg, keysAndValues...)
}

func (s *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logger.Error(msg, keysAndValues...)
}

func (s *StdLogger) Close() error {
	return s.logger.Close()
}

// Nop is a ports.Logger that discards everything. Used by tests and as a
// fallback when callers pass no logger.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
func (Nop) Close() error                 { return nil }
