package receipt

import (
	"fmt"
	"strings"
)

// Debt is what one participant owes the payer
type Debt struct {
	Participant string `json:"participant"`
	Amount      Cents  `json:"amount"`
}

// BreakdownLine pairs an item with the split chosen for it
type BreakdownLine struct {
	Item    LineItem `json:"item"`
	Label   string   `json:"label"`
	Members Split    `json:"members"`
}

// Result is the outcome of a completed session
type Result struct {
	Payer string `json:"payer"`
	// Total is the receipt's "Totaal" figure, or the items sum when the
	// receipt had none; TotalComputed tells which.
	Total         Cents           `json:"total"`
	TotalComputed bool            `json:"total_computed"`
	ItemsSum      Cents           `json:"items_sum"`
	Debts         []Debt          `json:"debts"`
	Breakdown     []BreakdownLine `json:"breakdown"`
}

func newResult(s *Session, balances Balances) *Result {
	parsed := ParsedReceipt{Items: s.Items, Total: s.Total}
	r := &Result{
		Payer:     s.Payer,
		ItemsSum:  parsed.ItemsSum(),
		Debts:     make([]Debt, 0, len(balances)),
		Breakdown: make([]BreakdownLine, 0, len(s.Items)),
	}
	if s.Total != nil {
		r.Total = *s.Total
	} else {
		r.Total = r.ItemsSum
		r.TotalComputed = true
	}

	for _, p := range s.roster.Participants() {
		if amount, ok := balances[p]; ok {
			r.Debts = append(r.Debts, Debt{Participant: p, Amount: amount})
		}
	}
	for i, item := range s.Items {
		r.Breakdown = append(r.Breakdown, BreakdownLine{
			Item:    item,
			Label:   s.Labels[i],
			Members: s.splits[i],
		})
	}
	return r
}

// Report renders the result as plain text for terminals and text/plain responses.
func (r *Result) Report(symbol string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s paid %s in total", r.Payer, r.Total.Format(symbol))
	if r.TotalComputed {
		b.WriteString(" (sum of items, no total line found)")
	}
	b.WriteString("\nSplits:\n")
	for _, d := range r.Debts {
		fmt.Fprintf(&b, "%s pays %s %s\n", d.Participant, r.Payer, d.Amount.Format(symbol))
	}

	b.WriteString("\nFull breakdown:\n")
	for _, line := range r.Breakdown {
		fmt.Fprintf(&b, "%s (%s)  %s  %s  (%s)\n",
			line.Item.Name, line.Item.TranslatedName, line.Item.Amount,
			line.Item.Price.Format(symbol), line.Label)
	}
	return b.String()
}
