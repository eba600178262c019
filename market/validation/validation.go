// Package validation parses values typed by users during conversational flows.
// Every function is pure and deterministic.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxNameLen bounds names, business names and addresses in runes.
const MaxNameLen = 64

// MaxDescriptionLen bounds product descriptions in runes.
const MaxDescriptionLen = 500

// MaxPrice is the largest price a NUMERIC(14,2) column holds.
const MaxPrice = 999999999999.99

// ValidatePrice parses a positive price with at most two decimal places.
// Currency words around the number, spaces and thousands separators are
// stripped; a single comma is read as a decimal separator when no dot is
// present. Letters inside the number are rejected.
func ValidatePrice(text string) (float64, bool) {
	s := normalizeNumber(text)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxPrice {
		return 0, false
	}
	return v, true
}

// ValidateOptionalPrice is ValidatePrice for optional fields: zero means the
// value was not provided and yields (nil, true).
func ValidateOptionalPrice(text string) (*float64, bool) {
	s := normalizeNumber(text)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == 0 {
		return nil, true
	}
	v, ok := ValidatePrice(text)
	if !ok {
		return nil, false
	}
	return &v, true
}

// normalizeNumber cuts the number out of text and drops its grouping. It
// returns "" when anything but digits, separators, a sign and spaces sits
// between the first and the last digit.
func normalizeNumber(text string) string {
	rs := []rune(strings.TrimSpace(text))
	first, last := -1, -1
	for i, r := range rs {
		if r >= '0' && r <= '9' {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return ""
	}
	for first > 0 && strings.ContainsRune(".,-", rs[first-1]) {
		first--
	}
	if last+1 < len(rs) && strings.ContainsRune(".,", rs[last+1]) {
		last++
	}

	var b strings.Builder
	for _, r := range rs[first : last+1] {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
		default:
			return ""
		}
	}
	s := b.String()
	switch {
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		// "12,5" is a decimal, "12,500" is grouping.
		if i := strings.IndexByte(s, ','); len(s)-i-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.Count(s, ".") > 1 || strings.LastIndexByte(s, '-') > 0 {
		return ""
	}
	return s
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// String formats the time as zero-padded HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
}

var timeOfDayRe = regexp.MustCompile(`^(\d{1,2})\s*[:.\- ]\s*(\d{2})$`)

// ValidateTimeOfDay parses "HH:MM"; ".", "-" and a space are accepted as
// separators. Hours must be 0-23, minutes two digits 0-59.
func ValidateTimeOfDay(text string) (TimeOfDay, bool) {
	m := timeOfDayRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return TimeOfDay{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hours: h, Minutes: mm}, true
}

// RollForward returns the instant of tod on the calendar day of now, in now's
// location, moved to the next day when that instant is already in the past.
func RollForward(now time.Time, tod TimeOfDay) time.Time {
	y, mo, d := now.Date()
	at := time.Date(y, mo, d, tod.Hours, tod.Minutes, 0, 0, now.Location())
	if at.Before(now) {
		at = time.Date(y, mo, d+1, tod.Hours, tod.Minutes, 0, 0, now.Location())
	}
	return at
}

// ValidateQuantity parses a positive integer count.
func ValidateQuantity(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ValidatePhone strips formatting and accepts 7-15 digits with an optional
// leading plus.
func ValidatePhone(text string) (string, bool) {
	s := strings.TrimSpace(text)
	plus := strings.HasPrefix(s, "+")
	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+', r == ' ', r == '-', r == '(', r == ')':
		default:
			return "", false
		}
	}
	d := digits.String()
	if len(d) < 7 || len(d) > 15 {
		return "", false
	}
	if plus {
		return "+" + d, true
	}
	return d, true
}

// ValidateName trims text and accepts 1..MaxNameLen printable runes.
func ValidateName(text string) (string, bool) {
	return validateText(text, MaxNameLen)
}

// ValidateDescription trims text and accepts 1..MaxDescriptionLen printable runes.
func ValidateDescription(text string) (string, bool) {
	return validateText(text, MaxDescriptionLen)
}

func validateText(text string, max int) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" || utf8.RuneCountInString(s) > max || strings.HasPrefix(s, "/") {
		return "", false
	}
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' {
			return "", false
		}
	}
	return s, true
}
