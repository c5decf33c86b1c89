// Package symbols canonicalizes raw venue symbol strings (e.g. "BTCUSDT")
// into the "BASE/QUOTE" form used throughout the domain model.
package symbols

import "strings"

// quoteSuffixes is the priority order in which trailing quote tokens are
// recognised. A symbol matching neither suffix is skipped by the caller.
var quoteSuffixes = []string{"USDT", "USDC"}

// Split splits a raw venue symbol like "BTCUSDT" into ("BTC", "USDT", true).
// Returns ok=false if no recognised quote suffix matches, or the base would
// be empty.
func Split(raw string) (base, quote string, ok bool) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	for _, suffix := range quoteSuffixes {
		if strings.HasSuffix(upper, suffix) {
			base = strings.TrimSuffix(upper, suffix)
			if base == "" {
				continue
			}
			return base, suffix, true
		}
	}
	return "", "", false
}

// Canonical returns "BASE/QUOTE" for a raw venue symbol, or ("", false) if
// it cannot be split.
func Canonical(raw string) (string, bool) {
	base, quote, ok := Split(raw)
	if !ok {
		return "", false
	}
	return base + "/" + quote, true
}

// Parse splits an already-canonical "BASE/QUOTE" string back into its
// parts. Round-trips exactly with Canonical for any base + recognised
// quote.
func Parse(symbol string) (base, quote string, ok bool) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Base extracts the base currency from a canonical "BASE/QUOTE" symbol; a
// string that does not parse as "BASE/QUOTE" is returned unchanged.
func Base(symbol string) string {
	base, _, ok := Parse(symbol)
	if !ok {
		return symbol
	}
	return base
}
