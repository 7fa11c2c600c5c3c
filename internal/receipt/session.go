package receipt

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a session operation does not fit its current state
var ErrInvalidTransition = errors.New("invalid session transition")

// State is the position of a session in the split workflow
type State int

const (
	AwaitingPayerSelection State = iota
	AwaitingItemSplit
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingPayerSelection:
		return "awaiting_payer"
	case AwaitingItemSplit:
		return "awaiting_split"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name for JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{AwaitingPayerSelection, AwaitingItemSplit, Complete} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Session is one receipt being split: the uploaded image, what was parsed
// from it, and the choices made so far. Items are assigned strictly in
// order and never revisited.
//
// Session is not safe for concurrent use.
type Session struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Image       []byte     `json:"-"`
	Text        string     `json:"text"`
	Items       []LineItem `json:"items"`
	Total       *Cents     `json:"total,omitempty"`
	Payer       string     `json:"payer,omitempty"`
	Labels      []string   `json:"splits"`
	State       State      `json:"state"`
	Index       int        `json:"index"`
	CreatedAt   time.Time  `json:"created_at"`

	roster *Roster
	splits []Split
}

// NewSession starts a session over a parsed receipt, waiting for the payer.
func NewSession(id string, parsed ParsedReceipt, roster *Roster, now time.Time) *Session {
	return &Session{
		ID:        id,
		Items:     parsed.Items,
		Total:     parsed.Total,
		Labels:    make([]string, 0, len(parsed.Items)),
		State:     AwaitingPayerSelection,
		CreatedAt: now,
		roster:    roster,
		splits:    make([]Split, 0, len(parsed.Items)),
	}
}

// Roster returns the participants and split options of the session.
func (s *Session) Roster() *Roster {
	return s.roster
}

// SelectPayer records who paid the receipt and moves on to the first item.
func (s *Session) SelectPayer(name string) error {
	if s.State != AwaitingPayerSelection {
		return fmt.Errorf("%w: cannot select payer while %s", ErrInvalidTransition, s.State)
	}
	payer, ok := s.roster.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPayer, name)
	}
	s.Payer = payer
	s.State = AwaitingItemSplit
	s.advance()
	return nil
}

// CurrentItem returns the item waiting for a split.
func (s *Session) CurrentItem() (LineItem, bool) {
	if s.State != AwaitingItemSplit {
		return LineItem{}, false
	}
	return s.Items[s.Index], true
}

// AssignSplit assigns the current item to the option with the given label.
func (s *Session) AssignSplit(label string) error {
	if err := s.checkAssignable(1); err != nil {
		return err
	}
	option, ok := s.roster.Option(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSplit, label)
	}
	s.assign(option.Members)
	return nil
}

// AssignMembers assigns the current item to an arbitrary set of participants,
// whether or not it is one of the offered options.
func (s *Session) AssignMembers(members []string) error {
	if err := s.checkAssignable(1); err != nil {
		return err
	}
	split, err := s.roster.Normalize(members)
	if err != nil {
		return err
	}
	s.assign(split)
	return nil
}

// AssignAll assigns labels to the remaining items in order. Either every
// label is applied or none is.
func (s *Session) AssignAll(labels []string) error {
	if err := s.checkAssignable(len(labels)); err != nil {
		return err
	}
	if len(labels) != len(s.Items)-s.Index {
		return fmt.Errorf("%w: %d items left, %d splits", ErrSplitCountMismatch, len(s.Items)-s.Index, len(labels))
	}
	resolved := make([]SplitOption, len(labels))
	for i, label := range labels {
		option, ok := s.roster.Option(label)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSplit, label)
		}
		resolved[i] = option
	}
	for _, option := range resolved {
		s.assign(option.Members)
	}
	return nil
}

// Splits returns the splits assigned so far, paired with Items by position.
func (s *Session) Splits() []Split {
	return append([]Split(nil), s.splits...)
}

// Result computes who owes the payer what. It is only available once every
// item has a split.
func (s *Session) Result() (*Result, error) {
	if s.State != Complete {
		return nil, fmt.Errorf("%w: result not available while %s", ErrInvalidTransition, s.State)
	}
	balances, err := s.roster.CalculateBalances(s.Items, s.splits, s.Payer)
	if err != nil {
		return nil, fmt.Errorf("calculating balances: %w", err)
	}
	return newResult(s, balances), nil
}

// snapshot copies the session so it can be read while the original changes
func (s *Session) snapshot() *Session {
	c := *s
	c.Items = make([]LineItem, len(s.Items))
	copy(c.Items, s.Items)
	c.Labels = make([]string, len(s.Labels))
	copy(c.Labels, s.Labels)
	c.splits = make([]Split, len(s.splits))
	copy(c.splits, s.splits)
	return &c
}

func (s *Session) checkAssignable(n int) error {
	if s.State != AwaitingItemSplit {
		return fmt.Errorf("%w: cannot assign split while %s", ErrInvalidTransition, s.State)
	}
	if n == 0 {
		return fmt.Errorf("%w: no splits given", ErrSplitCountMismatch)
	}
	return nil
}

func (s *Session) assign(split Split) {
	s.splits = append(s.splits, split)
	s.Labels = append(s.Labels, s.roster.Label(split))
	s.Index++
	s.advance()
}

func (s *Session) advance() {
	if s.State == AwaitingItemSplit && s.Index >= len(s.Items) {
		s.State = Complete
	}
}
