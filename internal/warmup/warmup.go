// Package warmup pre-touches the expensive pipeline components before the
// first real record arrives. The language detector loads its models on
// first use and the normalizer compiles its patterns; paying that cost
// during startup keeps per-record latency flat.
package warmup

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/TearGosling/augmenting-conv-data/internal/ports"
)

// Config defines configuration for warming up the system.
type Config struct {
	// Concurrency is the number of warmup goroutines per component.
	Concurrency int
	// Iterations is the number of warmup calls per goroutine.
	Iterations int
	// Duration bounds the whole warmup (0 means no time limit).
	Duration time.Duration
	// ForceGC triggers a garbage collection after warmup.
	ForceGC bool
}

// DefaultConfig returns the default warmup configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: runtime.NumCPU(),
		Iterations:  50,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// sampleMessages resemble the corpus: chat turns with the artifacts the
// normalizer targets and enough words for the detector to classify.
var sampleMessages = []string{
	"Hello there!! How are you doing today? I was hoping we could talk for a while...",
	"wow..... that is honestly the strangest thing I have heard all week.You should tell me more",
	"*waves* - I mean, sure, why not, let us see where this goes",
	"The quick brown fox jumps over the lazy dog, again and again, until the evening comes.",
}

// Manager runs the warmup for registered components.
type Manager struct {
	logger      ports.Logger
	normalizers []ports.Normalizer
	detectors   []ports.LanguageDetector
	config      Config
}

// NewManager creates a warmup manager.
func NewManager(logger ports.Logger, config Config) *Manager {
	return &Manager{logger: logger, config: config}
}

// RegisterNormalizer adds a normalizer to be warmed up.
func (m *Manager) RegisterNormalizer(n ports.Normalizer) {
	m.normalizers = append(m.normalizers, n)
}

// RegisterDetector adds a language detector to be warmed up.
func (m *Manager) RegisterDetector(d ports.LanguageDetector) {
	m.detectors = append(m.detectors, d)
}

// WarmUp runs the warmup process for all registered components.
func (m *Manager) WarmUp(ctx context.Context) {
	start := time.Now()
	m.logger.Info("Starting warmup",
		"normalizers", len(m.normalizers),
		"detectors", len(m.detectors),
		"concurrency", m.config.Concurrency,
		"iterations", m.config.Iterations,
	)

	if m.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Duration)
		defer cancel()
	}

	var wg sync.WaitGroup
	for i := 0; i < m.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < m.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				msg := sampleMessages[j%len(sampleMessages)]
				for _, n := range m.normalizers {
					_ = n.Normalize(msg)
				}
				for _, d := range m.detectors {
					_, _ = d.Detect(msg)
				}
			}
		}()
	}
	wg.Wait()

	if m.config.ForceGC {
		runtime.GC()
	}

	m.logger.Info("Warmup completed", "duration", time.Since(start))
}
