package ai

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DraftTransaction is a candidate transaction recovered from extracted
// document text. Drafts are returned to the client for review; nothing is
// persisted until the user confirms.
type DraftTransaction struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date,omitempty"`
	Type        string  `json:"type"`
}

var (
	amountRx = regexp.MustCompile(`(-?\d{1,3}(?:[.,]\d{3})*[.,]\d{2}|-?\d+[.,]\d{2})\s*(?:€|EUR|\$|USD)?`)
	dateRx   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}[/.]\d{1,2}[/.]\d{2,4})\b`)
)

// ParseTransactions scans extracted text line by line and returns a draft
// for every line carrying a recognizable amount. Negative amounts and
// common debit markers classify a line as an expense.
func ParseTransactions(text string) []DraftTransaction {
	drafts := []DraftTransaction{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := amountRx.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, ok := parseAmount(m[1])
		if !ok || amount == 0 {
			continue
		}

		d := DraftTransaction{
			Amount:      abs(amount),
			Description: describe(line, m[0]),
			Type:        classify(line, amount),
		}
		if dm := dateRx.FindString(line); dm != "" {
			if t, ok := parseDate(dm); ok {
				d.Date = t.Format("2006-01-02")
			}
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// parseAmount handles both 1,234.56 and 1.234,56 style separators.
func parseAmount(s string) (float64, bool) {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	if lastComma > lastDot {
		// comma is the decimal separator
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "02.01.2006", "02/01/06", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var expenseMarkers = []string{"debit", "payment", "purchase", "withdrawal", "fee", "cargo", "pago", "compra"}

func classify(line string, amount float64) string {
	if amount < 0 {
		return "expense"
	}
	lower := strings.ToLower(line)
	for _, marker := range expenseMarkers {
		if strings.Contains(lower, marker) {
			return "expense"
		}
	}
	return "income"
}

// describe strips the matched amount and any date from the line, leaving
// the merchant/concept text.
func describe(line, amountMatch string) string {
	desc := strings.Replace(line, amountMatch, "", 1)
	desc = dateRx.ReplaceAllString(desc, "")
	desc = strings.Join(strings.Fields(desc), " ")
	if len(desc) > 120 {
		desc = desc[:120]
	}
	return desc
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
