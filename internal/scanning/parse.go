package scanning

import (
	"fmt"
	"strings"
)

// transcriptionPrompt asks a vision model for a verbatim transcript. The
// language name is substituted for %s.
const transcriptionPrompt = `You are reading a photographed or scanned shop receipt written in %s. Transcribe every printed line of the receipt exactly as it appears, from top to bottom.

Rules:
- Output one receipt line per text line, keeping the original line breaks
- Keep item names, quantities, weights and prices on the same line as printed
- Keep numbers exactly as printed, including the comma as decimal separator (e.g. 1,92) and minus signs
- Keep tax category letters (such as A, B or C) that follow a price
- Do not translate, summarize, reorder or correct anything
- Do not add any explanation, headings or markdown code blocks`

var languageNames = map[string]string{
	"nl": "Dutch",
	"de": "German",
	"fr": "French",
	"en": "English",
	"hu": "Hungarian",
}

func buildPrompt(language string) string {
	name, ok := languageNames[strings.ToLower(language)]
	if !ok {
		name = "the local language"
	}
	return fmt.Sprintf(transcriptionPrompt, name)
}

// cleanTranscript normalizes a model transcript into plain receipt lines
func cleanTranscript(text string) (string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
