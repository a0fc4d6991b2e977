package validate

import (
	"regexp"
	"strconv"
	"strings"

	"lootmarket/internal/domain"

	"github.com/shopspring/decimal"
)

const MaxQty = 99

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ       = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSlug    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)
)

var maxPrice = decimal.NewFromInt(1_000_000)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a cart quantity. Zero is allowed (the cart treats it as "remove").
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > MaxQty {
		return 0, false
	}
	return n, true
}

// Page parses a 1-based page number; anything unusable is page 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ID validates a simple resource identifier (item/category/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, reSlug.MatchString(s)
}

// Slugify derives a slug from a display name: "Dragon Blade +1" -> "dragon-blade-1".
func Slugify(s string) string {
	s = reNonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.TrimRight(s[:80], "-")
	}
	return s
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}

// Price accepts a non-negative amount with at most two decimals.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThan(maxPrice) || !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

func Stock(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 1_000_000 {
		return 0, false
	}
	return n, true
}

func Status(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, domain.ValidOrderStatus(s)
}

func Role(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == domain.RoleUser || s == domain.RoleAdmin
}

// Password enforces length and character classes for new and existing passwords.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
