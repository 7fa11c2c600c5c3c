package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in the receipt currency, stored in hundredths
type Cents int64

// ParseAmount converts a receipt amount such as "-0,50" or "1,92" into Cents.
// Both comma and dot are accepted as the fractional separator.
func ParseAmount(s string) (Cents, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Cents(d.Shift(2).Round(0).IntPart()), nil
}

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with two fractional digits, e.g. "1.96".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format prefixes the amount with a currency symbol, e.g. "€1.96".
func (c Cents) Format(symbol string) string {
	return symbol + c.String()
}

// Share splits the amount evenly into n parts and rounds the part to the
// nearest cent, halves away from zero.
func (c Cents) Share(n int) Cents {
	if n <= 0 {
		return 0
	}
	part := decimal.NewFromInt(int64(c)).Div(decimal.NewFromInt(int64(n)))
	return Cents(part.Round(0).IntPart())
}

// MarshalJSON encodes the amount as a JSON number in currency units.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or string in currency units.
func (c *Cents) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAmount(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
