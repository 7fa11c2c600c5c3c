package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-splitter/internal/scanning"
	"github.com/zombor/receipt-splitter/internal/translation"
)

// ErrSessionNotFound is returned for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// sessionTTL is how long an unfinished or unread session keeps its upload in memory
const sessionTTL = 24 * time.Hour

// IDGenerator generates unique IDs for sessions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the receipt workflow: recognize, parse, then split item by item
type Service struct {
	recognizer  scanning.Recognizer
	translator  translation.Translator
	roster      *Roster
	metrics     *Metrics
	sourceLang  string
	targetLang  string
	idGenerator IDGenerator
	timeSource  TimeSource

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a new Service with default ID generator and time source.
// Item names are translated from Dutch to English until SetLanguages is called.
func NewService(recognizer scanning.Recognizer, translator translation.Translator, roster *Roster, metrics *Metrics) *Service {
	return NewServiceWithDeps(recognizer, translator, roster, metrics, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(recognizer scanning.Recognizer, translator translation.Translator, roster *Roster, metrics *Metrics, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		recognizer:  recognizer,
		translator:  translator,
		roster:      roster,
		metrics:     metrics,
		sourceLang:  "nl",
		targetLang:  "en",
		idGenerator: idGen,
		timeSource:  timeSrc,
		sessions:    make(map[string]*Session),
	}
}

// SetLanguages sets the language pair used for item name translation
func (s *Service) SetLanguages(source, target string) {
	s.sourceLang = source
	s.targetLang = target
}

// Roster returns the participants and split options
func (s *Service) Roster() *Roster {
	return s.roster
}

// Translate returns a function translating item names, falling back to the
// name itself on failure
func (s *Service) Translate(ctx context.Context) TranslateFunc {
	return func(name string) string {
		translated, ok := translation.OrOriginal(ctx, s.translator, name, s.sourceLang, s.targetLang)
		if !ok {
			s.metrics.translationFallback()
		}
		return translated
	}
}

// Recognize sends the image to the recognizer and returns the receipt text.
// Both a provider failure and an empty result are errors.
func (s *Service) Recognize(ctx context.Context, data []byte, contentType string) (string, error) {
	start := s.timeSource.Now()
	text, err := s.recognizer.RecognizeText(ctx, data, contentType)
	s.metrics.observeRecognition(s.timeSource.Now().Sub(start))
	if err != nil {
		return "", fmt.Errorf("recognizing receipt: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("recognizing receipt: %w", scanning.ErrNoText)
	}
	return text, nil
}

// ProcessReceipt recognizes the uploaded image, parses its items and opens a
// session waiting for the payer. No session is created when recognition fails.
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Session, error) {
	text, err := s.Recognize(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.metrics.receiptProcessed("recognition_failed")
		return nil, err
	}

	parsed := ParseItems(text, s.Translate(ctx))
	s.metrics.parsed(parsed)
	s.metrics.receiptProcessed("parsed")
	slog.Info("Parsed receipt",
		"filename", filename,
		"items", len(parsed.Items),
		"dropped_lines", parsed.Dropped,
		"total_found", parsed.Total != nil,
	)

	session := NewSession(s.idGenerator.Generate(), parsed, s.roster, s.timeSource.Now())
	session.Filename = filename
	session.ContentType = contentType
	session.Image = data
	session.Text = text

	s.mu.Lock()
	s.pruneExpired(session.CreatedAt)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.snapshot(), nil
}

// GetSession retrieves a copy of a session by ID
func (s *Service) GetSession(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// GetSessionFile returns the uploaded receipt of a session and its content type
func (s *Service) GetSessionFile(id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(id)
	if err != nil {
		return nil, "", err
	}
	return session.Image, session.ContentType, nil
}

// DeleteSession discards a session so a new receipt can be uploaded
func (s *Service) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// SelectPayer records the payer of a session
func (s *Service) SelectPayer(id, payer string) (*Session, error) {
	return s.update(id, func(session *Session) error {
		return session.SelectPayer(payer)
	})
}

// AssignSplit assigns the next item of a session to the option with the given label
func (s *Service) AssignSplit(id, label string) (*Session, error) {
	return s.update(id, func(session *Session) error {
		return session.AssignSplit(label)
	})
}

// AssignAll assigns labels to every remaining item of a session, in order.
// The number of labels must match the number of items left.
func (s *Service) AssignAll(id string, labels []string) (*Session, error) {
	return s.update(id, func(session *Session) error {
		return session.AssignAll(labels)
	})
}

// AssignMembers assigns the next item of a session to an arbitrary set of participants
func (s *Service) AssignMembers(id string, members []string) (*Session, error) {
	return s.update(id, func(session *Session) error {
		return session.AssignMembers(members)
	})
}

// Result returns the balances of a completed session
func (s *Service) Result(id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return session.Result()
}

func (s *Service) update(id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// pruneExpired drops sessions created more than sessionTTL before now.
// Callers must hold s.mu.
func (s *Service) pruneExpired(now time.Time) {
	for id, session := range s.sessions {
		if now.Sub(session.CreatedAt) > sessionTTL {
			slog.Info("Discarding expired session", "id", id, "state", session.State.String())
			delete(s.sessions, id)
		}
	}
}

func (s *Service) lookup(id string) (*Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}
