package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Date attribute layouts of the feed root: Tarih is Turkish, Date is US order.
const (
	tarihLayout = "02.01.2006"
	dateLayout  = "01/02/2006"
)

var errEmptyField = errors.New("empty value")

// tcmbDocument mirrors the root of the official today.xml document.
type tcmbDocument struct {
	XMLName    xml.Name       `xml:"Tarih_Date"`
	Tarih      string         `xml:"Tarih,attr"`
	Date       string         `xml:"Date,attr"`
	Currencies []tcmbCurrency `xml:"Currency"`
}

type tcmbCurrency struct {
	Kod             string `xml:"Kod,attr"`
	CurrencyCode    string `xml:"CurrencyCode,attr"`
	Unit            string `xml:"Unit"`
	Isim            string `xml:"Isim"`
	CurrencyName    string `xml:"CurrencyName"`
	ForexBuying     string `xml:"ForexBuying"`
	ForexSelling    string `xml:"ForexSelling"`
	BanknoteBuying  string `xml:"BanknoteBuying"`
	BanknoteSelling string `xml:"BanknoteSelling"`
	CrossRateUSD    string `xml:"CrossRateUSD"`
	CrossRateOther  string `xml:"CrossRateOther"`
}

func (c tcmbCurrency) code() string {
	code := c.Kod
	if strings.TrimSpace(code) == "" {
		code = c.CurrencyCode
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// XMLDocumentParser turns a TCMB style document into normalized quotes.
type XMLDocumentParser struct {
	tracked     map[string]struct{}
	requireDate bool
	now         func() time.Time
}

// NewXMLDocumentParser creates a parser keeping only the tracked codes.
// With requireDate set a document without a usable date is rejected;
// otherwise the parse time is used as effective date.
func NewXMLDocumentParser(requireDate bool, tracked []string) *XMLDocumentParser {
	set := make(map[string]struct{}, len(tracked))
	for _, code := range tracked {
		set[strings.ToUpper(code)] = struct{}{}
	}
	return &XMLDocumentParser{
		tracked:     set,
		requireDate: requireDate,
		now:         time.Now,
	}
}

// Parse decodes raw and returns the effective date and quotes. The domestic
// currency is always first. Field-level failures are reported as warnings
// and never fail the parse.
func (p *XMLDocumentParser) Parse(raw []byte) (*domain.ParsedFeed, error) {
	var doc tcmbDocument
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&doc); err != nil {
		return nil, &apperrors.ParseError{Reason: "unrecognized document root", Err: err}
	}
	result := &domain.ParsedFeed{}
	effectiveDate, ok := parseDocumentDate(doc)
	if !ok {
		if p.requireDate {
			return nil, &apperrors.ParseError{Reason: fmt.Sprintf("missing or invalid document date (Tarih=%q Date=%q)", doc.Tarih, doc.Date)}
		}
		effectiveDate = p.now()
	} else {
		result.DateFromFeed = true
	}
	result.EffectiveDate = domain.NormalizeDate(effectiveDate)

	result.Quotes = append(result.Quotes, domain.IdentityQuote(result.EffectiveDate))
	seen := map[string]struct{}{domain.DomesticCurrency: {}}

	for _, entry := range doc.Currencies {
		code := entry.code()
		if _, ok := p.tracked[code]; !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		quote, warnings := toQuote(code, entry, result.EffectiveDate)
		result.Quotes = append(result.Quotes, quote)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

func toQuote(code string, entry tcmbCurrency, effectiveDate time.Time) (domain.RateQuote, []error) {
	var warnings []error
	field := func(name, value string) decimal.Decimal {
		d, err := ParseLocaleDecimal(value)
		if err != nil {
			warnings = append(warnings, &apperrors.FieldParseError{Currency: code, Field: name, Value: value, Err: err})
			return decimal.Zero
		}
		return d
	}

	quote := domain.RateQuote{
		CurrencyCode:    code,
		CurrencyName:    strings.TrimSpace(entry.CurrencyName),
		Unit:            1,
		ForexBuying:     field("ForexBuying", entry.ForexBuying),
		ForexSelling:    field("ForexSelling", entry.ForexSelling),
		BanknoteBuying:  field("BanknoteBuying", entry.BanknoteBuying),
		BanknoteSelling: field("BanknoteSelling", entry.BanknoteSelling),
		EffectiveDate:   effectiveDate,
	}
	if quote.CurrencyName == "" {
		quote.CurrencyName = strings.TrimSpace(entry.Isim)
	}

	if unit := strings.TrimSpace(entry.Unit); unit != "" {
		n, err := strconv.Atoi(unit)
		if err != nil || n <= 0 {
			warnings = append(warnings, &apperrors.FieldParseError{Currency: code, Field: "Unit", Value: unit, Err: fmt.Errorf("not a positive integer")})
		} else {
			quote.Unit = n
		}
	}

	cross := strings.TrimSpace(entry.CrossRateUSD)
	crossField := "CrossRateUSD"
	if cross == "" {
		cross = strings.TrimSpace(entry.CrossRateOther)
		crossField = "CrossRateOther"
	}
	if cross != "" {
		d, err := ParseLocaleDecimal(cross)
		if err != nil {
			warnings = append(warnings, &apperrors.FieldParseError{Currency: code, Field: crossField, Value: cross, Err: err})
		} else {
			quote.CrossRate = &d
		}
	}

	return quote, warnings
}

func parseDocumentDate(doc tcmbDocument) (time.Time, bool) {
	if t, err := time.Parse(tarihLayout, strings.TrimSpace(doc.Tarih)); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, strings.TrimSpace(doc.Date)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseLocaleDecimal parses a non-negative decimal written with either a
// comma or a dot as decimal separator, optionally with thousands separators:
// "32,10", "32.1000", "1.234,56", "1,234.56" and "1 234,56" are all accepted.
// Repeated separators are only accepted as well-formed thousands groups.
func ParseLocaleDecimal(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(s)
	if s == "" {
		return decimal.Zero, errEmptyField
	}

	var decimalSep, groupSep string
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator comes last is the decimal one.
		if lastComma > lastDot {
			decimalSep, groupSep = ",", "."
		} else {
			decimalSep, groupSep = ".", ","
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			groupSep = ","
		} else {
			decimalSep = ","
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			groupSep = "."
		} else {
			decimalSep = "."
		}
	}

	intPart, fracPart := s, ""
	if decimalSep != "" {
		i := strings.LastIndex(s, decimalSep)
		intPart, fracPart = s[:i], s[i+1:]
		if strings.Contains(intPart, decimalSep) {
			return decimal.Zero, fmt.Errorf("repeated decimal separator in %q", value)
		}
		if !isDigits(fracPart) {
			return decimal.Zero, fmt.Errorf("invalid fraction in %q", value)
		}
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign, intPart = intPart[:1], intPart[1:]
	}
	if groupSep != "" {
		grouped, err := ungroup(intPart, groupSep)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w in %q", err, value)
		}
		intPart = grouped
	}
	if intPart == "" || !isDigits(intPart) {
		return decimal.Zero, fmt.Errorf("invalid integer part in %q", value)
	}

	normalized := sign + intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative rate %s", d)
	}
	return d, nil
}

// ungroup strips thousands separators from s. The first group has one to
// three digits and every later group exactly three.
func ungroup(s, sep string) (string, error) {
	groups := strings.Split(s, sep)
	for i, g := range groups {
		if !isDigits(g) {
			return "", fmt.Errorf("malformed digit group %q", g)
		}
		if i == 0 && len(g) > 3 || i > 0 && len(g) != 3 {
			return "", fmt.Errorf("malformed digit group %q", g)
		}
	}
	return strings.Join(groups, ""), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// charsetReader decodes the legacy Turkish encodings the feed has been
// published in. UTF-8 documents never reach it.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-9", "iso8859-9", "latin5":
		return charmap.ISO8859_9.NewDecoder().Reader(input), nil
	case "windows-1254", "cp1254":
		return charmap.Windows1254.NewDecoder().Reader(input), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "us-ascii", "ascii", "utf8":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
