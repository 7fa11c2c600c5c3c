package receipt

import (
	"regexp"
	"strings"
)

// TranslateFunc returns the translation of an item name. Implementations must
// fall back to the name itself when translation fails.
type TranslateFunc func(name string) string

var (
	// totalMarker matches "Totaal" as a whole word in any case, so "Subtotaal" is not a total.
	totalMarker   = regexp.MustCompile(`(?i)\btotaal\b`)
	totalPattern  = regexp.MustCompile(`(?i)\btotaal\b\s*:?\s+(-?\d+,\d{2})`)
	weightPattern = regexp.MustCompile(`^(\d+,\d+\s*(?i:kg)\s*x\s*\d+,\d+)\s+(?i:EUR)\b`)
	itemPattern   = regexp.MustCompile(`^(.+?)\s+(?:(\d+\s*x\s*\d+,\d{2})\s+)?(-?\d+,\d{2})(?:\s+[ABC])?\s*$`)
)

// discountPatterns are tried in order before itemPattern, otherwise the loose
// name group of itemPattern would swallow them.
var discountPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"price-reduced", regexp.MustCompile(`^(?i)(In prijs verlaagd)\s+(-?\d+,\d{2})(?:\s+[ABC])?\s*$`)},
	{"loyalty", regexp.MustCompile(`^(?i)((?:Lidl Plus|Bonus(?:kaart)?|AH Bonus) korting)\s+(-?\d+,\d{2})(?:\s+[ABC])?\s*$`)},
	{"percentage", regexp.MustCompile(`^(?i)(Korting\s+\d+\s?%)\s+(-?\d+,\d{2})(?:\s+[ABC])?\s*$`)},
}

// ParseItems scans recognized receipt text line by line and extracts the
// purchased items and the receipt total. Lines that match nothing are
// dropped. Scanning stops at the first line with the word "Totaal".
//
// translate is called once per emitted item; nil keeps the original names.
func ParseItems(text string, translate TranslateFunc) ParsedReceipt {
	if translate == nil {
		translate = func(name string) string { return name }
	}

	parsed := ParsedReceipt{Items: make([]LineItem, 0)}
	last := -1

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if totalMarker.MatchString(line) {
			if m := totalPattern.FindStringSubmatch(line); m != nil {
				if total, err := ParseAmount(m[1]); err == nil {
					parsed.Total = &total
				}
			}
			break
		}

		if m := weightPattern.FindStringSubmatch(line); m != nil {
			if last >= 0 {
				parsed.Items[last].Amount = m[1]
			}
			continue
		}

		item, ok := parseDiscount(line)
		if !ok {
			item, ok = parseItem(line)
		}
		if !ok {
			parsed.Dropped++
			continue
		}

		item.TranslatedName = translate(item.Name)
		parsed.Items = append(parsed.Items, item)
		last = len(parsed.Items) - 1
	}

	return parsed
}

func parseDiscount(line string) (LineItem, bool) {
	for _, d := range discountPatterns {
		m := d.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, err := ParseAmount(m[2])
		if err != nil {
			return LineItem{}, false
		}
		return LineItem{Name: strings.TrimSpace(m[1]), Price: price}, true
	}
	return LineItem{}, false
}

func parseItem(line string) (LineItem, bool) {
	m := itemPattern.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return LineItem{}, false
	}
	price, err := ParseAmount(m[3])
	if err != nil {
		return LineItem{}, false
	}
	return LineItem{
		Name:   name,
		Amount: strings.TrimSpace(m[2]),
		Price:  price,
	}, true
}
