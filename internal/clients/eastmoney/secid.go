package eastmoney

import "strings"

// SecID converts an instrument code to the "<market>.<code>" form the quote endpoint expects.
// Codes that already carry a market prefix pass through unchanged.
func SecID(code string) string {
	if strings.Contains(code, ".") {
		return code
	}

	switch {
	case len(code) == 5 && isDigits(code):
		// Hong Kong listings disclosed by cross-border funds
		return "116." + code
	case strings.HasPrefix(code, "51"), strings.HasPrefix(code, "56"),
		strings.HasPrefix(code, "58"), strings.HasPrefix(code, "6"),
		strings.HasPrefix(code, "11"), strings.HasPrefix(code, "9"):
		return "1." + code
	default:
		// 15x/30x/0x and 12x convertibles trade in Shenzhen
		return "0." + code
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
