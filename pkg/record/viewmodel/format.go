package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	// DefaultCurrencyLocale is the locale used to group currency amounts.
	DefaultCurrencyLocale = "es-CO"
	// DefaultCurrencyCode is the ISO 4217 code amounts are expressed in.
	DefaultCurrencyCode = "COP"
	// DefaultDateLocale is the locale used for month names.
	DefaultDateLocale = "es_ES"

	dateLayout = "2 Jan 2006, 15:04"
)

// FormatConfig selects the fixed locale used for display formatting.
type FormatConfig struct {
	CurrencyLocale string
	CurrencyCode   string
	DateLocale     string
	Location       *time.Location
}

// Formatter renders currency and date values with a fixed locale. It is
// immutable and safe for concurrent use.
type Formatter struct {
	unit      currency.Unit
	symbol    string
	group     string
	point     string
	dateLoc   monday.Locale
	location  *time.Location
	zeroValue string
}

var currencySymbols = map[string]string{
	"COP": "$",
	"USD": "$",
	"MXN": "$",
	"CLP": "$",
	"ARS": "$",
	"EUR": "€",
	"GBP": "£",
}

// groupingByBase maps a language base to its thousands and decimal separators.
var groupingByBase = map[string][2]string{
	"es": {".", ","},
	"pt": {".", ","},
	"de": {".", ","},
	"it": {".", ","},
	"nl": {".", ","},
	"en": {",", "."},
}

// DefaultFormatter returns a Formatter for es-CO/COP amounts and es_ES dates.
func DefaultFormatter() *Formatter {
	f, err := NewFormatter(FormatConfig{})
	if err != nil {
		panic(err)
	}
	return f
}

// NewFormatter validates the configured locales and returns a Formatter.
// Empty fields fall back to the package defaults.
func NewFormatter(cfg FormatConfig) (*Formatter, error) {
	if cfg.CurrencyLocale == "" {
		cfg.CurrencyLocale = DefaultCurrencyLocale
	}
	if cfg.CurrencyCode == "" {
		cfg.CurrencyCode = DefaultCurrencyCode
	}
	if cfg.DateLocale == "" {
		cfg.DateLocale = DefaultDateLocale
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	tag, err := language.Parse(cfg.CurrencyLocale)
	if err != nil {
		return nil, fmt.Errorf("viewmodel: currency locale %q: %w", cfg.CurrencyLocale, err)
	}
	unit, err := currency.ParseISO(cfg.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("viewmodel: currency code %q: %w", cfg.CurrencyCode, err)
	}
	dateLoc, err := parseDateLocale(cfg.DateLocale)
	if err != nil {
		return nil, err
	}

	base, _ := tag.Base()
	seps, ok := groupingByBase[base.String()]
	if !ok {
		seps = groupingByBase["es"]
	}
	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}

	f := &Formatter{
		unit:     unit,
		symbol:   symbol,
		group:    seps[0],
		point:    seps[1],
		dateLoc:  dateLoc,
		location: cfg.Location,
	}
	f.zeroValue = f.format(decimal.Zero)
	return f, nil
}

func parseDateLocale(raw string) (monday.Locale, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")
	for _, loc := range monday.ListLocales() {
		if strings.EqualFold(string(loc), normalized) {
			return loc, nil
		}
	}
	return "", fmt.Errorf("viewmodel: unsupported date locale %q", raw)
}

// CurrencyCode reports the ISO code amounts are rendered in.
func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}

// ZeroCurrency is the rendering of a missing or zero amount.
func (f *Formatter) ZeroCurrency() string {
	return f.zeroValue
}

// Currency formats an amount with two decimals. A nil or zero amount renders
// as ZeroCurrency.
func (f *Formatter) Currency(amount *decimal.Decimal) string {
	if amount == nil || amount.IsZero() {
		return f.zeroValue
	}
	return f.format(*amount)
}

func (f *Formatter) format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return fmt.Sprintf("%s%s %s%s%s", sign, f.symbol, groupDigits(intPart, f.group), f.point, fracPart)
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date renders year, short month, day, hour and minute in the date locale.
// A nil or zero time renders as the empty string.
func (f *Formatter) Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return monday.Format(t.In(f.location), dateLayout, f.dateLoc)
}
