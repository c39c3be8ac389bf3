// Package amount converts between human decimal strings and fixed-point
// integer token amounts. Parsing fails soft: malformed input becomes a zero
// amount, never an error, because the input is transient and re-editable.
// Formatting truncates rather than rounds so a displayed amount never
// overstates what the engine computed.
package amount

import (
	"math/big"
	"strconv"
	"strings"
)

// DefaultDisplayDecimals bounds the fractional digits shown to the user.
const DefaultDisplayDecimals = 6

// Parse converts user input into base units for a token with the given
// decimal precision. Characters outside [0-9.] are stripped, a second decimal
// point rejects the whole input, and fraction digits beyond the token's
// precision are truncated.
func Parse(input string, decimals uint8) *big.Int {
	cleaned := stripInvalid(input)
	if cleaned == "" || cleaned == "." {
		return new(big.Int)
	}

	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		return new(big.Int)
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > int(decimals) {
		frac = frac[:decimals]
	}

	// Scale the fraction up to exactly `decimals` digits.
	frac += strings.Repeat("0", int(decimals)-len(frac))

	combined := whole + frac
	if combined == "" {
		return new(big.Int)
	}

	value, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return new(big.Int)
	}
	return value
}

// Format renders a base-unit value as a decimal string, truncated to
// displayDecimals fractional digits, with trailing zeros and any trailing
// decimal point stripped.
func Format(value *big.Int, decimals uint8, displayDecimals int) string {
	if value == nil || value.Sign() == 0 {
		return "0"
	}

	neg := value.Sign() < 0
	abs := new(big.Int).Abs(value)

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	out := whole.String()

	if displayDecimals > 0 && frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", int(decimals)-len(digits)) + digits
		if len(digits) > displayDecimals {
			digits = digits[:displayDecimals]
		}
		digits = strings.TrimRight(digits, "0")
		if digits != "" {
			out += "." + digits
		}
	}

	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// FormatDefault renders with the standard 6 display decimals.
func FormatDefault(value *big.Int, decimals uint8) string {
	return Format(value, decimals, DefaultDisplayDecimals)
}

// FormatPercent renders a float percentage with a fixed number of places.
func FormatPercent(value float64, places int) string {
	if places < 0 {
		places = 0
	}
	return strconv.FormatFloat(value, 'f', places, 64) + "%"
}

// ShortenHash abbreviates a transaction hash for display: 0x1234...abcd.
func ShortenHash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-4:]
}

// ShortenAddress abbreviates an address keeping chars hex digits each side.
func ShortenAddress(address string, chars int) string {
	if chars <= 0 || len(address) <= chars*2+2 {
		return address
	}
	return address[:chars+2] + "..." + address[len(address)-chars:]
}

func stripInvalid(input string) string {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
