// Command server exposes the conversation-cleaning pipeline over HTTP for
// ad-hoc use: cleaning single conversations, probing the language gate,
// and normalizing individual messages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	convclean "github.com/TearGosling/augmenting-conv-data"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

var (
	cleaner *convclean.Cleaner
	logger  l.Logger
)

// CleanRequest carries one conversation to clean.
type CleanRequest struct {
	Conversation []convclean.Turn `json:"conversation"`
	BotName      string           `json:"bot_name"`
}

// CleanResponse reports the cleaning outcome. Rejection is a normal
// outcome, so it is returned with status 200 and Accepted set to false.
type CleanResponse struct {
	Accepted     bool             `json:"accepted"`
	Conversation []convclean.Turn `json:"conversation,omitempty"`
	TotalTurns   int              `json:"total_turns"`
	ForeignTurns int              `json:"foreign_turns"`
	ForeignRatio float64          `json:"foreign_ratio"`
	Threshold    float64          `json:"threshold"`
}

// NormalizeRequest carries a single message for the normalization chain.
type NormalizeRequest struct {
	Message string `json:"message"`
}

// NormalizeResponse returns the normalized message.
type NormalizeResponse struct {
	Normalized string `json:"normalized"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	threshold := flag.Float64("threshold", convclean.DefaultThreshold, "Largest tolerated ratio of foreign turns")
	targetLanguage := flag.String("target-language", "en", "ISO 639-1 code of the wanted language")
	warmUp := flag.Bool("warm-up", true, "Warm up the detector and normalizer on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	var err error
	logger, err = createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting cleaning HTTP server",
		"port", *port,
		"threshold", *threshold,
		"target_language", *targetLanguage,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
	)

	cleaner, err = convclean.New(
		convclean.WithThreshold(*threshold),
		convclean.WithTargetLanguage(*targetLanguage),
		convclean.WithLogger(logger),
		convclean.WithWarmUp(*warmUp),
	)
	if err != nil {
		logger.Error("Failed to initialize cleaner", "error", err)
		os.Exit(1)
	}

	server := &fasthttp.Server{
		Handler:            requestHandler,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		MaxRequestBodySize: *maxRequestSize,
		Concurrency:        *concurrency,
		TCPKeepalive:       true,
		TCPKeepalivePeriod: 3 * time.Minute,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	logger.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// requestHandler is the main fasthttp request handler.
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "ConvCleanServer")

	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/clean":
		handleClean(ctx)
	case "/gate":
		handleGate(ctx)
	case "/normalize":
		handleNormalize(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func handleClean(ctx *fasthttp.RequestCtx) {
	var req CleanRequest
	if !decodePost(ctx, &req) {
		return
	}
	if req.BotName == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "bot_name is required")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := cleaner.Clean(c, req.Conversation, req.BotName)

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, CleanResponse{
		Accepted:     result.Accepted,
		Conversation: result.Conversation,
		TotalTurns:   result.Gate.TotalTurns,
		ForeignTurns: result.Gate.ForeignTurns,
		ForeignRatio: result.Gate.ForeignRatio,
		Threshold:    result.Gate.Threshold,
	})
}

func handleGate(ctx *fasthttp.RequestCtx) {
	var req CleanRequest
	if !decodePost(ctx, &req) {
		return
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gate := cleaner.Gate(c, req.Conversation)

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, CleanResponse{
		Accepted:     gate.Accepted,
		TotalTurns:   gate.TotalTurns,
		ForeignTurns: gate.ForeignTurns,
		ForeignRatio: gate.ForeignRatio,
		Threshold:    gate.Threshold,
	})
}

func handleNormalize(ctx *fasthttp.RequestCtx) {
	var req NormalizeRequest
	if !decodePost(ctx, &req) {
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, NormalizeResponse{
		Normalized: cleaner.Normalize(req.Message),
	})
}

// decodePost enforces the POST method and decodes the JSON body into dst.
// It writes the error response itself and reports whether decoding worked.
func decodePost(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func writeJSONResponse(ctx *fasthttp.RequestCtx, response interface{}) {
	data, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Failed to encode response")
		return
	}
	ctx.SetBody(data)
}

func writeJSONError(ctx *fasthttp.RequestCtx, msg string) {
	data, err := json.Marshal(ErrorResponse{Error: msg})
	if err != nil {
		ctx.SetBodyString(`{"error":"internal error"}`)
		return
	}
	ctx.SetBody(data)
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
