// Package translation translates receipt item names. Translation is best
// effort: callers go through OrOriginal, which keeps the original text on
// any failure.
package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Translator translates short pieces of text between languages
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Identity returns text unchanged. It backs the "none" provider.
type Identity struct{}

// Translate returns text as is.
func (Identity) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// OrOriginal translates text and falls back to text itself when t is nil,
// fails, or returns nothing. The boolean reports whether a translation was
// obtained.
func OrOriginal(ctx context.Context, t Translator, text, source, target string) (string, bool) {
	if t == nil || strings.TrimSpace(text) == "" {
		return text, true
	}
	translated, err := t.Translate(ctx, text, source, target)
	if err != nil {
		slog.Debug("Translation failed, keeping original", "text", text, "error", err)
		return text, false
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		slog.Debug("Empty translation, keeping original", "text", text)
		return text, false
	}
	return translated, true
}

// Config selects and configures a Translator
type Config struct {
	Provider    string
	GoogleKey   string
	GeminiKey   string
	GeminiModel string
	CachePath   string
}

// New creates the Translator named by cfg.Provider: "google", "gemini" or
// "none". When cfg.CachePath is set the translator is wrapped in a BoltCache;
// the returned close function releases both.
func New(ctx context.Context, cfg Config) (Translator, func() error, error) {
	var (
		t       Translator
		closers []func() error
	)

	switch cfg.Provider {
	case "google":
		g, err := NewGoogle(ctx, cfg.GoogleKey)
		if err != nil {
			return nil, nil, err
		}
		t = g
	case "gemini":
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		t = g
		closers = append(closers, g.Close)
	case "none", "":
		return Identity{}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("invalid translator %q: valid values are google, gemini or none", cfg.Provider)
	}

	if cfg.CachePath != "" {
		cache, err := NewBoltCache(cfg.CachePath, t)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		t = cache
		closers = append(closers, cache.Close)
	}

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return t, closeAll, nil
}
