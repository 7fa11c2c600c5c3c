package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const translatePrompt = `Translate this grocery receipt item name from language code %q to language code %q. Receipt names are often abbreviated; expand them if the meaning is clear. Reply with the translation only, on one line, without quotes or explanation.

%s`

// Gemini translates with a Gemini model
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini translator
func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{client: client, model: model}, nil
}

// Translate translates text from source to target language
func (g *Gemini) Translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(translatePrompt, source, target, text)))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			out.WriteString(string(t))
		}
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out.String()), "\n")
	return strings.Trim(line, `"' `), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
