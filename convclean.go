package convclean

import (
	"context"
	"io"

	"github.com/baditaflorin/l"

	"github.com/TearGosling/augmenting-conv-data/internal/adapters/detector"
	"github.com/TearGosling/augmenting-conv-data/internal/adapters/logger"
	"github.com/TearGosling/augmenting-conv-data/internal/adapters/normalizer"
	"github.com/TearGosling/augmenting-conv-data/internal/adapters/stream/jsonl"
	"github.com/TearGosling/augmenting-conv-data/internal/core/cleanse"
	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
	"github.com/TearGosling/augmenting-conv-data/internal/core/gate"
	"github.com/TearGosling/augmenting-conv-data/internal/ports"
	"github.com/TearGosling/augmenting-conv-data/internal/warmup"
)

// Re-exported domain types; the facade and the core share them.
type (
	// Turn is a single message within a conversation.
	Turn = domain.Turn
	// Result holds the outcome of cleaning one conversation.
	Result = domain.Result
	// GateResult holds the outcome of a language-gate evaluation.
	GateResult = domain.GateResult
	// Stats summarizes a batch run over a record stream.
	Stats = jsonl.Stats
)

// DefaultThreshold is the default largest tolerated ratio of foreign turns.
const DefaultThreshold = 0.2

// Option defines a functional option for configuring a Cleaner.
type Option func(*cleanerConfig)

type cleanerConfig struct {
	Threshold      float64
	TargetLanguage string
	Workers        int
	Logger         ports.Logger
	Normalizer     ports.Normalizer
	Detector       ports.LanguageDetector
	WarmUp         bool
	WarmUpConfig   warmup.Config
}

// WithThreshold sets the largest tolerated ratio of foreign turns, in [0, 1].
func WithThreshold(th float64) Option {
	return func(cfg *cleanerConfig) {
		cfg.Threshold = th
	}
}

// WithTargetLanguage sets the wanted language as a lower-case ISO 639-1
// code. The default is English.
func WithTargetLanguage(code string) Option {
	return func(cfg *cleanerConfig) {
		cfg.TargetLanguage = code
	}
}

// WithWorkers sets how many records CleanStream cleans concurrently.
func WithWorkers(n int) Option {
	return func(cfg *cleanerConfig) {
		cfg.Workers = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *cleanerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithNormalizer sets a custom message normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *cleanerConfig) {
		cfg.Normalizer = n
	}
}

// WithDetector sets a custom language detector.
func WithDetector(d ports.LanguageDetector) Option {
	return func(cfg *cleanerConfig) {
		cfg.Detector = d
	}
}

// WithWarmUp enables component warmup on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *cleanerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warmup configuration and enables warmup.
func WithWarmUpConfig(config warmup.Config) Option {
	return func(cfg *cleanerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// Cleaner is the public entry point of the conversation-cleaning pipeline.
type Cleaner struct {
	cleaner    *cleanse.Cleaner
	gate       *gate.Gate
	normalizer ports.Normalizer
	detector   ports.LanguageDetector
	logger     ports.Logger
	workers    int
	warmed     bool
}

// New creates a Cleaner with the provided functional options. Without
// options it gates against English at DefaultThreshold, uses the default
// normalization chain, and logs through the standard logger.
func New(opts ...Option) (*Cleaner, error) {
	cfg := &cleanerConfig{
		Threshold:    DefaultThreshold,
		WarmUpConfig: warmup.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		lg, err := logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
		cfg.Logger = lg
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = normalizer.NewDefaultNormalizer()
	}
	if cfg.Detector == nil {
		cfg.Detector = detector.NewLingua()
	}

	g, err := gate.New(gate.Config{
		Threshold:      cfg.Threshold,
		TargetLanguage: cfg.TargetLanguage,
	}, cfg.Detector, cfg.Logger)
	if err != nil {
		return nil, err
	}

	c := &Cleaner{
		cleaner:    cleanse.New(g, cfg.Normalizer, cfg.Logger),
		gate:       g,
		normalizer: cfg.Normalizer,
		detector:   cfg.Detector,
		logger:     cfg.Logger,
		workers:    cfg.Workers,
	}

	if cfg.WarmUp {
		c.WarmUp(context.Background(), cfg.WarmUpConfig)
	}

	return c, nil
}

// Clean runs one conversation through the pipeline. The result reports
// whether the conversation was accepted; rejection is an expected outcome,
// not an error.
func (c *Cleaner) Clean(ctx context.Context, conversation []Turn, characterName string) Result {
	return c.cleaner.Clean(ctx, conversation, characterName)
}

// Gate evaluates only the language gate, without normalizing anything.
func (c *Cleaner) Gate(ctx context.Context, conversation []Turn) GateResult {
	return c.gate.Evaluate(ctx, conversation)
}

// Normalize runs one message through the normalization chain.
func (c *Cleaner) Normalize(message string) string {
	return c.normalizer.Normalize(message)
}

// CleanStream reads line-delimited JSON records from reader, cleans each
// conversation, and writes accepted records to writer in input order.
func (c *Cleaner) CleanStream(ctx context.Context, reader io.Reader, writer io.Writer) (Stats, error) {
	processor := jsonl.NewProcessor(c.cleaner, c.logger, jsonl.ProcessingConfig{
		Workers: c.workers,
	})
	return processor.Process(ctx, reader, writer)
}

// WarmUp pre-touches the normalizer and the language detector.
func (c *Cleaner) WarmUp(ctx context.Context, config warmup.Config) {
	if c.warmed {
		c.logger.Debug("Components already warmed up, skipping")
		return
	}
	mgr := warmup.NewManager(c.logger, config)
	mgr.RegisterNormalizer(c.normalizer)
	mgr.RegisterDetector(c.detector)
	mgr.WarmUp(ctx)
	c.warmed = true
}
