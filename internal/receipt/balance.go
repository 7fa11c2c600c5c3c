package receipt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySplit is returned when an item is assigned to nobody
	ErrEmptySplit = errors.New("split has no participants")
	// ErrUnknownPayer is returned when the payer is empty or not in the roster
	ErrUnknownPayer = errors.New("unknown payer")
	// ErrSplitCountMismatch is returned when items and splits are not paired one to one
	ErrSplitCountMismatch = errors.New("number of splits does not match number of items")
)

// Balances maps each participant other than the payer to what they owe the payer
type Balances map[string]Cents

// CalculateBalances divides every item's price evenly between the members of
// its split, rounding each share to the cent before adding it up. items and
// splits are paired by position. The payer never appears in the result, and
// neither does anyone who is not in any split.
func CalculateBalances(items []LineItem, splits []Split, payer string) (Balances, error) {
	if strings.TrimSpace(payer) == "" {
		return nil, ErrUnknownPayer
	}
	if len(items) != len(splits) {
		return nil, fmt.Errorf("%w: %d items, %d splits", ErrSplitCountMismatch, len(items), len(splits))
	}
	for i, split := range splits {
		if err := validateSplit(split); err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, items[i].Name, err)
		}
	}

	costs := make(map[string]Cents)
	for i, item := range items {
		share := item.Price.Share(len(splits[i]))
		for _, p := range splits[i] {
			costs[p] += share
		}
	}

	balances := make(Balances, len(costs))
	for p, cost := range costs {
		if p == payer {
			continue
		}
		balances[p] = cost
	}
	return balances, nil
}

// CalculateBalances is like the package-level CalculateBalances but also
// checks payer and splits against the roster, and reports every participant
// other than the payer, with zero for those in no split.
func (r *Roster) CalculateBalances(items []LineItem, splits []Split, payer string) (Balances, error) {
	resolved, ok := r.Lookup(payer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayer, payer)
	}
	normalized := make([]Split, len(splits))
	for i, split := range splits {
		n, err := r.Normalize(split)
		if err != nil {
			return nil, fmt.Errorf("split %d: %w", i, err)
		}
		normalized[i] = n
	}

	balances, err := CalculateBalances(items, normalized, resolved)
	if err != nil {
		return nil, err
	}
	for _, p := range r.participants {
		if p == resolved {
			continue
		}
		if _, ok := balances[p]; !ok {
			balances[p] = 0
		}
	}
	return balances, nil
}

func validateSplit(split Split) error {
	if len(split) == 0 {
		return ErrEmptySplit
	}
	seen := make(map[string]bool, len(split))
	for _, p := range split {
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		seen[p] = true
	}
	return nil
}
