package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Duration suffixes in seconds per unit. Matching is case-insensitive.
var durationUnits = map[string]float64{
	"ms":      0.001,
	"s":       1,
	"sec":     1,
	"secs":    1,
	"second":  1,
	"seconds": 1,
	"m":       60,
	"min":     60,
	"mins":    60,
	"minute":  60,
	"minutes": 60,
	"h":       3600,
	"hr":      3600,
	"hrs":     3600,
	"hour":    3600,
	"hours":   3600,
}

// Size suffixes in bytes per unit, decimal base: 1kb = 1000 bytes.
// Binary multiples are deliberately not exposed so a suffix always
// means one thing.
var sizeUnits = map[string]float64{
	"b":  1,
	"kb": 1e3,
	"mb": 1e6,
	"gb": 1e9,
	"tb": 1e12,
}

// ResolveDuration parses a duration literal into seconds.
//
// Accepted forms:
//   - plain number: seconds ("5.5")
//   - clock: "MM:SS" or "H:MM:SS" ("3:30", "1:02:03")
//   - suffixed: "500ms", "5m", "2 hours", case-insensitive, with an
//     optional space before the suffix
//
// A bare number is always seconds. Anything else is an error, never a
// silent zero.
func ResolveDuration(token string) (float64, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return 0, fmt.Errorf("%w: empty duration", ErrMalformedLiteral)
	}
	if strings.Contains(tok, ":") {
		return resolveClock(tok)
	}

	num, suffix := splitUnitSuffix(tok)
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, token)
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, token)
	}
	if suffix == "" {
		return value, nil
	}
	mult, ok := durationUnits[strings.ToLower(suffix)]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, suffix, token)
	}
	return value * mult, nil
}

// ResolveSize parses a size literal into bytes. A bare number is always
// bytes; suffixes are decimal ("1kb" = 1000, "1mb" = 1000000),
// case-insensitive, with an optional space before the suffix.
func ResolveSize(token string) (float64, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return 0, fmt.Errorf("%w: empty size", ErrMalformedLiteral)
	}

	num, suffix := splitUnitSuffix(tok)
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, token)
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, token)
	}
	if suffix == "" {
		return value, nil
	}
	mult, ok := sizeUnits[strings.ToLower(suffix)]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, suffix, token)
	}
	return value * mult, nil
}

// splitUnitSuffix splits a literal into its leading numeric part and the
// trailing unit suffix, tolerating whitespace between them.
func splitUnitSuffix(tok string) (num, suffix string) {
	i := 0
	for i < len(tok) {
		c := tok[i]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		i++
	}
	return tok[:i], strings.TrimSpace(tok[i:])
}

// resolveClock parses "MM:SS" and "H:MM:SS" forms. Components are not
// range-checked, so "5:90" resolves to 390 seconds.
func resolveClock(tok string) (float64, error) {
	parts := strings.Split(tok, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, tok)
	}

	var total float64
	for i, part := range parts {
		if part == "" {
			return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, tok)
		}
		last := i == len(parts)-1
		if !last && strings.Contains(part, ".") {
			return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, tok)
		}
		value, err := strconv.ParseFloat(part, 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedLiteral, tok)
		}
		total = total*60 + value
	}
	return total, nil
}
