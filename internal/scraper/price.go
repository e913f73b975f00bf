package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxCurrencyLetters is the length of an ISO 4217 code.
const maxCurrencyLetters = 3

var (
	// Space-grouped thousands such as "1 299,00" or "1 299".
	spacedThousands = regexp.MustCompile(`(\d)[\s\x{00a0}\x{202f}](\d{3})`)
	numberToken     = regexp.MustCompile(`\d(?:[\d.,]*\d)?`)
	currencyPrefix  = regexp.MustCompile(`^\s*([^\d\s.,\-]+)`)
	currencySuffix  = regexp.MustCompile(`([^\d\s.,\-]+)\s*$`)
	ratingPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s+out\s+of\s+5`)
)

// ParsePrice converts a displayed price such as "$1,299.00", "1.299,00 €"
// or "12,99" to a number. Only the first number in raw is read, so ranges
// yield their lower bound.
func ParsePrice(raw string) (float64, bool) {
	s := raw
	for spacedThousands.MatchString(s) {
		s = spacedThousands.ReplaceAllString(s, "$1$2")
	}
	token := numberToken.FindString(s)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(normalizeSeparators(token), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites a digit run with "." and "," separators into
// a plain decimal string. When both separators occur, the last one is the
// decimal mark. A lone separator followed by exactly three digits groups
// thousands.
func normalizeSeparators(token string) string {
	lastDot := strings.LastIndexByte(token, '.')
	lastComma := strings.LastIndexByte(token, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			return strings.Replace(token, ",", ".", 1)
		}
		return strings.ReplaceAll(token, ",", "")
	case lastComma >= 0:
		return decimalOrGrouped(token, ',')
	case lastDot >= 0:
		return decimalOrGrouped(token, '.')
	default:
		return token
	}
}

func decimalOrGrouped(token string, sep byte) string {
	sepStr := string(sep)
	last := strings.LastIndexByte(token, sep)
	if strings.Count(token, sepStr) == 1 && len(token)-last-1 != 3 {
		return strings.Replace(token, sepStr, ".", 1)
	}
	return strings.ReplaceAll(token, sepStr, "")
}

// currencyFromRaw returns the non-numeric prefix or suffix of a displayed
// price, e.g. "$" from "$29.99" or "€" from "29,99 €". Tokens carrying
// more letters than an ISO code ("Previous", "Price") are not currencies.
func currencyFromRaw(raw string) (string, bool) {
	if m := currencyPrefix.FindStringSubmatch(raw); m != nil && isCurrencyToken(m[1]) {
		return m[1], true
	}
	if m := currencySuffix.FindStringSubmatch(raw); m != nil && isCurrencyToken(m[1]) {
		return m[1], true
	}
	return "", false
}

func isCurrencyToken(tok string) bool {
	letters := 0
	for _, r := range tok {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters <= maxCurrencyLetters
}

// parseRating reads the value of an "x out of 5" phrase.
func parseRating(text string) (float64, bool) {
	m := ratingPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || v < 0 || v > 5 {
		return 0, false
	}
	return v, true
}
