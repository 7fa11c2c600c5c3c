package translation

import (
	"context"
	"fmt"
	"html"
	"time"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// Google translates with the Cloud Translation v2 API
type Google struct {
	service *translate.Service
}

// NewGoogle creates a Google translator authenticated with an API key
func NewGoogle(ctx context.Context, apiKey string) (*Google, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google translate api key is required")
	}
	return NewGoogleWithOptions(ctx, option.WithAPIKey(apiKey))
}

// NewGoogleWithOptions creates a Google translator with custom client options for testing
func NewGoogleWithOptions(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	service, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating translate service: %w", err)
	}
	return &Google{service: service}, nil
}

// Translate translates text from source to target language
func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := g.service.Translations.List([]string{text}, target).
		Source(source).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("calling translate API: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	// The API can still escape entities such as &#39; in text mode
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}
