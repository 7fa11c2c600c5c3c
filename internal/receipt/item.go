package receipt

// LineItem is one purchased entry or price adjustment on a receipt
type LineItem struct {
	Name           string `json:"name"`
	TranslatedName string `json:"translated_name"`
	// Amount is the quantity or weight text, e.g. "3 x 0,64" or "1,20 kg x 2,99".
	// Empty means a single unit.
	Amount string `json:"amount,omitempty"`
	Price  Cents  `json:"price"`
}

// ParsedReceipt is the output of ParseItems
type ParsedReceipt struct {
	Items []LineItem `json:"items"`
	// Total is the figure from the "Totaal" line, nil when none was found.
	Total *Cents `json:"total,omitempty"`
	// Dropped counts non-blank lines that matched no pattern.
	Dropped int `json:"-"`
}

// ItemsSum returns the sum of all item prices, discounts included.
func (p ParsedReceipt) ItemsSum() Cents {
	var sum Cents
	for _, item := range p.Items {
		sum += item.Price
	}
	return sum
}
