package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zombor/receipt-splitter/internal/logging"
	"github.com/zombor/receipt-splitter/internal/receipt"
	"github.com/zombor/receipt-splitter/internal/scanning"
	"github.com/zombor/receipt-splitter/internal/translation"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-splitter")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		recognizerType = fs.StringLong("recognizer", "gemini", "Text recognizer: 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		translatorType = fs.StringLong("translator", "google", "Item name translator: 'google', 'gemini' or 'none'")
		translateKey   = fs.StringLong("google-translate-key", "", "Google Cloud Translation API key (or set GOOGLE_TRANSLATE_API_KEY env var)")
		sourceLang     = fs.StringLong("source-lang", "nl", "Language of the receipts")
		targetLang     = fs.StringLong("target-lang", "en", "Language item names are translated to")
		cachePath      = fs.StringLong("translation-cache", "", "Translation cache file (empty disables caching)")
		participants   = fs.StringLong("participants", "Lili,Gergő,Ádi", "Comma-separated people splitting receipts")
		splitOptions   = fs.StringLong("split-options", "L,G,A,LG,LGA", "Comma-separated split labels offered per item (empty offers every combination)")
		currency       = fs.StringLong("currency-symbol", "€", "Currency symbol used in text reports")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel       = fs.StringLong("log-level", "", "Log level: debug, info, warn or error (or set LOG_LEVEL env var)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SPLITTER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logging.Setup(*logLevel)
	ctx := context.Background()

	// Initialize roster
	roster, err := receipt.NewRoster(splitList(*participants), splitList(*splitOptions))
	if err != nil {
		slog.Error("Invalid roster", "error", err)
		os.Exit(1)
	}
	slog.Info("Roster loaded", "participants", roster.Participants(), "options", len(roster.Options()))

	// Initialize recognizer based on type
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if *recognizerType == "gemini" && apiKey == "" {
		slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
		os.Exit(1)
	}
	slog.Info("Initializing recognizer...", "type", *recognizerType)
	recognizer, err := scanning.New(scanning.Config{
		Provider:    *recognizerType,
		GeminiKey:   apiKey,
		GeminiModel: *geminiModel,
		OllamaURL:   *ollamaURL,
		OllamaModel: *ollamaModel,
		Language:    *sourceLang,
	})
	if err != nil {
		slog.Error("Failed to initialize recognizer", "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	// Initialize translator
	googleKey := *translateKey
	if googleKey == "" {
		googleKey = os.Getenv("GOOGLE_TRANSLATE_API_KEY")
	}
	slog.Info("Initializing translator...", "type", *translatorType, "cache", *cachePath)
	translator, closeTranslator, err := translation.New(ctx, translation.Config{
		Provider:    *translatorType,
		GoogleKey:   googleKey,
		GeminiKey:   apiKey,
		GeminiModel: *geminiModel,
		CachePath:   *cachePath,
	})
	if err != nil {
		slog.Error("Failed to initialize translator", "error", err)
		os.Exit(1)
	}
	defer closeTranslator()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := receipt.NewMetrics(registry)

	// Initialize service
	receiptService := receipt.NewService(recognizer, translator, roster, metrics)
	receiptService.SetLanguages(*sourceLang, *targetLang)

	// Initialize server
	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth)
	server.SetCurrencySymbol(*currency)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// splitList splits a comma-separated flag value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
