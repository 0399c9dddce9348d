package numeric

import (
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/coachpo/materialcalc/errs"
)

// DefaultMaxMagnitude bounds user-entered values unless a caller overrides it.
var DefaultMaxMagnitude = ScaledFromInt(1_000_000_000)

// Constraints tunes Parse for a particular input field.
type Constraints struct {
	// Max is the largest accepted magnitude. The zero value disables the ceiling.
	Max Scaled
	// StrictMoney requires exactly two fractional digits when a lone comma
	// is read as the decimal separator.
	StrictMoney bool
	// RequirePositive rejects zero with CodeMustBePositive.
	RequirePositive bool
}

// DefaultConstraints returns the ceiling used for ordinary measurement fields.
func DefaultConstraints() Constraints {
	return Constraints{Max: DefaultMaxMagnitude, StrictMoney: false, RequirePositive: false}
}

var (
	commaGrouped = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	dotGrouped   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// Parse reads freeform numeric text into an exact Scaled value.
//
// Currency symbols and whitespace are ignored, full-width characters are
// folded to ASCII, and comma/dot separators are disambiguated. Fractional
// digits past the sixth are dropped without rounding. Failures are *errs.E
// values with an empty Field; callers re-key them with InField.
func Parse(text string, c Constraints) (Scaled, error) {
	cleaned := normalize(text)
	if cleaned == "" {
		return Scaled{}, errs.New("", errs.CodeEmptyInput, errs.WithMessage("enter a value"))
	}

	body, negative, err := stripSign(cleaned)
	if err != nil {
		return Scaled{}, err
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return Scaled{}, invalidNumber(text)
		}
	}

	intPart, fracPart, err := splitSeparators(body, c.StrictMoney)
	if err != nil {
		return Scaled{}, err
	}
	if intPart == "" && fracPart == "" {
		return Scaled{}, invalidNumber(text)
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > Scale {
		fracPart = fracPart[:Scale]
	}
	fracPart += strings.Repeat("0", Scale-len(fracPart))

	units, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Scaled{}, invalidNumber(text)
	}
	if negative {
		return Scaled{}, errs.New("", errs.CodeNegativeNotAllowed,
			errs.WithMessage("negative values are not allowed"),
			errs.WithDetail("input", text))
	}

	value := Scaled{units: units}
	if !c.Max.IsZero() && value.Cmp(c.Max) > 0 {
		return Scaled{}, errs.New("", errs.CodeTooLarge,
			errs.WithMessage("value must be at most "+c.Max.String()),
			errs.WithDetail("input", text))
	}
	if c.RequirePositive && value.IsZero() {
		return Scaled{}, errs.New("", errs.CodeMustBePositive,
			errs.WithMessage("value must be greater than zero"))
	}
	return value, nil
}

// ParseRational is Parse followed by FromScaled.
func ParseRational(text string, c Constraints) (Rational, error) {
	s, err := Parse(text, c)
	if err != nil {
		return Rational{}, err
	}
	return s.Rational(), nil
}

func normalize(text string) string {
	folded := width.Narrow.String(text)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r), unicode.Is(unicode.Sc, r):
			continue
		case r == '−':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSign(s string) (string, bool, error) {
	signs := strings.Count(s, "+") + strings.Count(s, "-")
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		negative = true
		signs++
	}
	if strings.ContainsAny(s, "()") {
		return "", false, invalidNumber(s)
	}
	if signs > 1 {
		return "", false, errs.New("", errs.CodeInvalidNumber,
			errs.WithMessage("use at most one sign"),
			errs.WithDetail("input", s))
	}
	switch {
	case strings.HasPrefix(s, "-"):
		s, negative = s[1:], true
	case strings.HasSuffix(s, "-"):
		s, negative = s[:len(s)-1], true
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if strings.ContainsAny(s, "+-") {
		return "", false, invalidNumber(s)
	}
	return s, negative, nil
}

// splitSeparators resolves which of '.' and ',' is the decimal separator and
// returns the digit-only integral and fractional parts.
func splitSeparators(body string, strictMoney bool) (string, string, error) {
	dots := strings.Count(body, ".")
	commas := strings.Count(body, ",")

	switch {
	case dots > 0 && commas > 0:
		decimalSep, groupSep, grouped := ".", ",", commaGrouped
		if strings.LastIndex(body, ",") > strings.LastIndex(body, ".") {
			decimalSep, groupSep, grouped = ",", ".", dotGrouped
		}
		if strings.Count(body, decimalSep) > 1 {
			return "", "", ambiguous(body)
		}
		idx := strings.LastIndex(body, decimalSep)
		intPart, fracPart := body[:idx], body[idx+1:]
		if !grouped.MatchString(intPart) {
			return "", "", ambiguous(body)
		}
		return strings.ReplaceAll(intPart, groupSep, ""), fracPart, nil
	case commas > 0:
		if commaGrouped.MatchString(body) {
			return strings.ReplaceAll(body, ",", ""), "", nil
		}
		if commas > 1 {
			return "", "", ambiguous(body)
		}
		intPart, fracPart, _ := strings.Cut(body, ",")
		if strictMoney && len(fracPart) != 2 {
			return "", "", errs.New("", errs.CodeAmbiguousNumberFormat,
				errs.WithMessage("use two digits after the decimal comma"),
				errs.WithDetail("input", body))
		}
		return intPart, fracPart, nil
	case dots > 1:
		if dotGrouped.MatchString(body) {
			return strings.ReplaceAll(body, ".", ""), "", nil
		}
		return "", "", ambiguous(body)
	case dots == 1:
		intPart, fracPart, _ := strings.Cut(body, ".")
		return intPart, fracPart, nil
	default:
		return body, "", nil
	}
}

func invalidNumber(input string) *errs.E {
	return errs.New("", errs.CodeInvalidNumber,
		errs.WithMessage("enter a number such as 12.5"),
		errs.WithDetail("input", input))
}

func ambiguous(input string) *errs.E {
	return errs.New("", errs.CodeAmbiguousNumberFormat,
		errs.WithMessage("cannot tell which separator marks the decimals"),
		errs.WithRemediation("use a single decimal point, e.g. 1234.5"),
		errs.WithDetail("input", input))
}
