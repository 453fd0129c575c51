package analysis

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCount truncates x toward zero and renders it with thousands
// separators, e.g. 1234567.9 -> "1,234,567".
func FormatCount(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "0"
	}
	return message.NewPrinter(language.English).Sprintf("%d", int64(x))
}
