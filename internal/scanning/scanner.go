package scanning

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRecognizerUnavailable wraps any failure to reach or use the recognition provider
	ErrRecognizerUnavailable = errors.New("recognizer unavailable")
	// ErrNoText is returned when recognition succeeded but produced no text
	ErrNoText = errors.New("no text recognized")
)

// Recognizer turns a receipt image into text
type Recognizer interface {
	// RecognizeText returns the receipt text with its original line breaks and
	// comma decimals preserved
	RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the recognizer and releases resources
	Close() error
}

// Config selects and configures a Recognizer
type Config struct {
	Provider    string
	GeminiKey   string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
	Language    string
}

// New creates the Recognizer named by cfg.Provider: "gemini" or "ollama".
func New(cfg Config) (Recognizer, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(cfg.GeminiKey, cfg.GeminiModel, cfg.Language)
	case "ollama":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.Language)
	default:
		return nil, fmt.Errorf("invalid recognizer %q: valid values are gemini or ollama", cfg.Provider)
	}
}
