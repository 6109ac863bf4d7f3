// Command cleaner runs a batch cleaning pass over a line-delimited JSON
// corpus, driven by a YAML configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/baditaflorin/l"

	convclean "github.com/TearGosling/augmenting-conv-data"
	"github.com/TearGosling/augmenting-conv-data/internal/config"
)

func main() {
	configPath := flag.String("c", "", "path to the YAML config file")
	workers := flag.Int("workers", 0, "override the number of cleaning workers (0 = use config)")
	logFile := flag.String("log-file", "", "log file path (empty = stdout)")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cleaner -c <config.yaml>")
		os.Exit(2)
	}

	logger, err := createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Cleaning.Workers = *workers
	}

	logger.Info("Starting batch cleaning",
		"input", cfg.Cleaning.InputPath(),
		"output", cfg.Cleaning.OutputPath(),
		"threshold", cfg.Cleaning.LanguageThreshold,
		"workers", cfg.Cleaning.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Batch cleaning failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger l.Logger, cfg *config.Config) error {
	in, err := os.Open(cfg.Cleaning.InputPath())
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(cfg.Cleaning.OutputPath())
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	cleaner, err := convclean.New(
		convclean.WithThreshold(cfg.Cleaning.LanguageThreshold),
		convclean.WithWorkers(cfg.Cleaning.Workers),
		convclean.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create cleaner: %w", err)
	}

	stats, err := cleaner.CleanStream(ctx, in, out)
	if err != nil {
		return err
	}

	logger.Info("Done",
		"records_in", stats.RecordsIn,
		"written", stats.Written,
		"rejected", stats.Rejected,
		"malformed", stats.Malformed,
		"duration", stats.Duration,
	)
	return out.Sync()
}

// createLogger builds the process logger, writing to logFile when set.
func createLogger(logFile string) (l.Logger, error) {
	output := os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		output = f
	}
	return l.NewStandardFactory().CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  logFile != "",
		AsyncWrite:  true,
		BufferSize:  256 * 1024,
		MaxFileSize: 10 * 1024 * 1024,
		MaxBackups:  3,
	})
}
