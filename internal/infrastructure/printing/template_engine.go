package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// India Standard Time; invoices show local dates
var ist = time.FixedZone("IST", 5*3600+1800)

// TemplateEngine renders HTML templates with the invoice helpers
type TemplateEngine struct {
	printer *message.Printer
	title   cases.Caser
	funcMap template.FuncMap
}

// NewTemplateEngine creates an engine formatting for en-IN
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		printer: message.NewPrinter(language.MustParse("en-IN")),
		title:   cases.Title(language.English),
	}
	e.funcMap = template.FuncMap{
		"inr":           e.formatINR,
		"amountInWords": amountInWords,
		"date":          formatDate,
		"label":         e.label,
		"upper":         strings.ToUpper,
		"isPositive":    func(d decimal.Decimal) bool { return d.IsPositive() },
	}
	return e
}

// Render parses tmpl and executes it with data
func (e *TemplateEngine) Render(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Funcs(e.funcMap).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatINR formats an amount as rupees, e.g. ₹1,250.50
func (e *TemplateEngine) formatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Round(2).Float64()
	return sign + "₹" + e.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// label turns an enum value such as "refund_pending" into "Refund Pending"
func (e *TemplateEngine) label(v any) string {
	return e.title.String(strings.ReplaceAll(fmt.Sprint(v), "_", " "))
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.In(ist).Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	default:
		return ""
	}
}

var (
	ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen",
		"Eighteen", "Nineteen"}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// amountInWords spells an amount the way Indian invoices do, using the
// crore/lakh/thousand grouping: 125050.5 → "Rupees One Lakh Twenty Five
// Thousand Fifty and Fifty Paise Only"
func amountInWords(d decimal.Decimal) string {
	paise := d.Abs().Round(2).Shift(2).IntPart()
	rupees, rem := paise/100, paise%100

	var b strings.Builder
	if d.IsNegative() && paise > 0 {
		b.WriteString("Minus ")
	}
	b.WriteString("Rupees ")
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(indianWords(rupees))
	}
	if rem > 0 {
		b.WriteString(" and ")
		b.WriteString(belowHundred(rem))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func indianWords(n int64) string {
	var parts []string
	if n >= 10000000 {
		parts = append(parts, indianWords(n/10000000), "Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, belowHundred(n/100000), "Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
