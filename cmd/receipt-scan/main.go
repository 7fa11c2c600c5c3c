// Command receipt-scan recognizes a single receipt file and splits it in the
// terminal. With --text-only it prints the recognized text and exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-splitter/internal/logging"
	"github.com/zombor/receipt-splitter/internal/receipt"
	"github.com/zombor/receipt-splitter/internal/scanning"
	"github.com/zombor/receipt-splitter/internal/translation"
)

func main() {
	fs := ff.NewFlagSet("receipt-scan")
	var (
		textOnly       = fs.BoolLong("text-only", "Print the recognized text and exit")
		recognizerType = fs.StringLong("recognizer", "gemini", "Text recognizer: 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		translatorType = fs.StringLong("translator", "google", "Item name translator: 'google', 'gemini' or 'none'")
		translateKey   = fs.StringLong("google-translate-key", "", "Google Cloud Translation API key (or set GOOGLE_TRANSLATE_API_KEY env var)")
		sourceLang     = fs.StringLong("source-lang", "nl", "Language of the receipt")
		targetLang     = fs.StringLong("target-lang", "en", "Language item names are translated to")
		cachePath      = fs.StringLong("translation-cache", "", "Translation cache file (empty disables caching)")
		participants   = fs.StringLong("participants", "Lili,Gergő,Ádi", "Comma-separated people splitting the receipt")
		splitOptions   = fs.StringLong("split-options", "L,G,A,LG,LGA", "Comma-separated split labels offered per item (empty offers every combination)")
		currency       = fs.StringLong("currency-symbol", "€", "Currency symbol used in the report")
		logLevel       = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SPLITTER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := fs.GetArgs()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: receipt-scan [flags] <receipt image>\n\n%s\n", ffhelp.Flags(fs))
		os.Exit(2)
	}

	logging.Setup(*logLevel)
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		slog.Error("Failed to read receipt", "path", args[0], "error", err)
		os.Exit(1)
	}

	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
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

	roster, err := receipt.NewRoster(splitList(*participants), splitList(*splitOptions))
	if err != nil {
		slog.Error("Invalid roster", "error", err)
		os.Exit(1)
	}

	contentType := scanning.ContentTypeFromFilename(args[0])

	if *textOnly {
		service := receipt.NewService(recognizer, nil, roster, nil)
		text, err := service.Recognize(ctx, data, contentType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read the receipt: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
		return
	}

	googleKey := *translateKey
	if googleKey == "" {
		googleKey = os.Getenv("GOOGLE_TRANSLATE_API_KEY")
	}
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

	service := receipt.NewService(recognizer, translator, roster, nil)
	service.SetLanguages(*sourceLang, *targetLang)

	fmt.Fprintf(os.Stderr, "Reading %s...\n", filepath.Base(args[0]))
	session, err := service.ProcessReceipt(ctx, filepath.Base(args[0]), data, contentType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read the receipt: %v\n", err)
		os.Exit(1)
	}

	result, err := split(service, session, bufio.NewScanner(os.Stdin), os.Stdout, *currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print("\n" + result.Report(*currency))
}

// split asks for the payer and then a split for every item, reprompting on
// invalid answers, and returns the result of the completed session.
func split(service *receipt.Service, session *receipt.Session, in *bufio.Scanner, out io.Writer, currency string) (*receipt.Result, error) {
	roster := service.Roster()

	fmt.Fprintf(out, "Found %d items\n", len(session.Items))
	for _, item := range session.Items {
		fmt.Fprintf(out, "  %s (%s)  %s  %s\n", item.Name, item.TranslatedName, item.Amount, item.Price.Format(currency))
	}
	if session.Total != nil {
		fmt.Fprintf(out, "Total: %s\n", session.Total.Format(currency))
	}

	for session.State == receipt.AwaitingPayerSelection {
		fmt.Fprintf(out, "\nWho paid? (%s): ", strings.Join(roster.Participants(), ", "))
		answer, err := readLine(in)
		if err != nil {
			return nil, err
		}
		next, err := service.SelectPayer(session.ID, answer)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		session = next
	}

	labels := make([]string, 0, len(roster.Options()))
	for _, o := range roster.Options() {
		labels = append(labels, o.Label)
	}
	choices := strings.Join(labels, "/")

	for session.State == receipt.AwaitingItemSplit {
		item, _ := session.CurrentItem()
		fmt.Fprintf(out, "%s (%s) %s [%s]: ", item.Name, item.TranslatedName, item.Price.Format(currency), choices)
		answer, err := readLine(in)
		if err != nil {
			return nil, err
		}
		next, err := service.AssignSplit(session.ID, answer)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		session = next
	}

	return service.Result(session.ID)
}

func readLine(in *bufio.Scanner) (string, error) {
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", errors.New("input closed before every item was split")
	}
	return strings.TrimSpace(in.Text()), nil
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
