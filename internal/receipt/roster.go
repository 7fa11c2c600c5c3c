package receipt

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrDuplicateParticipant is returned when a name appears twice in a roster or split
	ErrDuplicateParticipant = errors.New("duplicate participant")
	// ErrUnknownParticipant is returned when a split names someone outside the roster
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrUnknownSplit is returned when a split label is not one of the roster's options
	ErrUnknownSplit = errors.New("unknown split option")
)

// maxParticipants bounds the subset enumeration for rosters without fixed options.
const maxParticipants = 10

// Split is the set of participants sharing one item's cost
type Split []string

// SplitOption is a labelled split a user can pick for an item
type SplitOption struct {
	Label   string `json:"label"`
	Members Split  `json:"members"`
}

// Roster is the closed list of people splitting a receipt together with the
// split options offered for each item.
type Roster struct {
	participants []string
	abbrevs      []string
	compact      bool
	options      []SplitOption
}

// NewRoster builds a roster. When labels is empty every non-empty subset of
// participants is offered, smallest subsets first; otherwise only the given
// labels are offered, in the given order.
//
// Each participant is abbreviated to the shortest case-insensitive prefix no
// other participant shares. If all abbreviations are a single letter, labels
// concatenate them ("LG"); otherwise they are joined with "+" ("Lil+Lar").
func NewRoster(participants []string, labels []string) (*Roster, error) {
	r := &Roster{}
	seen := make(map[string]bool)
	for _, p := range participants {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(fold(p))
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		seen[key] = true
		r.participants = append(r.participants, p)
	}
	if len(r.participants) == 0 {
		return nil, errors.New("roster needs at least one participant")
	}

	r.abbrevs = abbreviate(r.participants)
	r.compact = true
	for _, a := range r.abbrevs {
		if utf8.RuneCountInString(a) != 1 {
			r.compact = false
			break
		}
	}

	if len(labels) == 0 {
		if len(r.participants) > maxParticipants {
			return nil, fmt.Errorf("too many participants to enumerate splits: %d (max %d)", len(r.participants), maxParticipants)
		}
		r.options = r.allSubsets()
		return r, nil
	}

	taken := make(map[string]bool)
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		members, err := r.parseLabel(label)
		if err != nil {
			return nil, err
		}
		canonical := r.Label(members)
		if taken[canonical] {
			continue
		}
		taken[canonical] = true
		r.options = append(r.options, SplitOption{Label: canonical, Members: members})
	}
	if len(r.options) == 0 {
		return nil, errors.New("roster needs at least one split option")
	}
	return r, nil
}

// Participants returns the roster in its configured order.
func (r *Roster) Participants() []string {
	return append([]string(nil), r.participants...)
}

// Options returns the split options offered for every item.
func (r *Roster) Options() []SplitOption {
	return append([]SplitOption(nil), r.options...)
}

// Lookup resolves a participant by exact name, case-insensitive name, or abbreviation.
func (r *Roster) Lookup(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, p := range r.participants {
		if p == s {
			return p, true
		}
	}
	folded := fold(s)
	for i, p := range r.participants {
		if strings.EqualFold(fold(p), folded) || strings.EqualFold(r.abbrevs[i], folded) {
			return p, true
		}
	}
	return "", false
}

// Option resolves a split label to one of the offered options.
func (r *Roster) Option(label string) (SplitOption, bool) {
	label = strings.TrimSpace(label)
	for _, o := range r.options {
		if o.Label == label {
			return o, true
		}
	}
	members, err := r.parseLabel(label)
	if err != nil {
		return SplitOption{}, false
	}
	canonical := r.Label(members)
	for _, o := range r.options {
		if o.Label == canonical {
			return o, true
		}
	}
	return SplitOption{}, false
}

// Label renders the label for a set of members in roster order.
func (r *Roster) Label(members Split) string {
	parts := make([]string, 0, len(members))
	for i, p := range r.participants {
		for _, m := range members {
			if m == p {
				parts = append(parts, r.abbrevs[i])
				break
			}
		}
	}
	if r.compact {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, "+")
}

// Normalize validates members against the roster and returns them in roster order.
func (r *Roster) Normalize(members []string) (Split, error) {
	if len(members) == 0 {
		return nil, ErrEmptySplit
	}
	picked := make(map[string]bool, len(members))
	for _, m := range members {
		p, ok := r.Lookup(m)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, m)
		}
		if picked[p] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		picked[p] = true
	}
	split := make(Split, 0, len(picked))
	for _, p := range r.participants {
		if picked[p] {
			split = append(split, p)
		}
	}
	return split, nil
}

func (r *Roster) parseLabel(label string) (Split, error) {
	var tokens []string
	switch {
	case r.isParticipant(label):
		tokens = []string{label}
	case strings.Contains(label, "+"):
		tokens = strings.Split(label, "+")
	case r.compact:
		for _, c := range label {
			tokens = append(tokens, string(c))
		}
	default:
		tokens = []string{label}
	}
	split, err := r.Normalize(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownSplit, label, err)
	}
	return split, nil
}

func (r *Roster) isParticipant(s string) bool {
	_, ok := r.Lookup(s)
	return ok
}

func (r *Roster) allSubsets() []SplitOption {
	n := len(r.participants)
	masks := make([]uint, 0, 1<<n-1)
	for mask := uint(1); mask < 1<<n; mask++ {
		masks = append(masks, mask)
	}
	// Smallest subsets first, then by roster position of the members.
	sort.SliceStable(masks, func(i, j int) bool {
		ci, cj := bits.OnesCount(masks[i]), bits.OnesCount(masks[j])
		if ci != cj {
			return ci < cj
		}
		return bits.Reverse(masks[i]) > bits.Reverse(masks[j])
	})

	options := make([]SplitOption, 0, len(masks))
	for _, mask := range masks {
		members := make(Split, 0, bits.OnesCount(mask))
		for i, p := range r.participants {
			if mask&(1<<i) != 0 {
				members = append(members, p)
			}
		}
		options = append(options, SplitOption{Label: r.Label(members), Members: members})
	}
	return options
}

// fold strips diacritics so "Ádi" abbreviates to "A".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// abbreviate returns, for each name, its shortest prefix that no other name
// starts with, ignoring case and diacritics. Names that are a prefix of
// another keep their full spelling.
func abbreviate(names []string) []string {
	lowered := make([][]rune, len(names))
	for i, n := range names {
		lowered[i] = []rune(strings.ToLower(fold(n)))
	}

	abbrevs := make([]string, len(names))
	for i, n := range names {
		runes := []rune(fold(n))
		abbrevs[i] = string(runes)
		for l := 1; l <= len(runes); l++ {
			if !prefixShared(lowered, i, l) {
				abbrevs[i] = string(runes[:l])
				break
			}
		}
	}
	return abbrevs
}

func prefixShared(lowered [][]rune, i, l int) bool {
	prefix := string(lowered[i][:l])
	for j, other := range lowered {
		if j == i || len(other) < l {
			continue
		}
		if string(other[:l]) == prefix {
			return true
		}
	}
	return false
}
