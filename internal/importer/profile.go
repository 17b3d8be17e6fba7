package importer

import (
	"strings"

	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

type decimalStyle int

const (
	// decimalComma reads "1.234,56".
	decimalComma decimalStyle = iota
	// decimalPoint reads "1,234.56".
	decimalPoint
)

// Profile describes one supported CSV layout. Column names are matched
// case-insensitively after trimming.
type Profile struct {
	Name         string
	Comma        rune
	InvoiceCol   string
	DateCol      string
	AmountCol    string
	MethodCol    string
	ReferenceCol string
	NotesCol     string
	DateLayouts  []string
	Decimal      decimalStyle
}

func (p *Profile) requiredCols() []string {
	return []string{p.InvoiceCol, p.DateCol, p.AmountCol}
}

// profiles are tried in order against the first rows of the file.
var profiles = []Profile{
	{
		Name:         "statement",
		Comma:        ';',
		InvoiceCol:   "invoice",
		DateCol:      "date",
		AmountCol:    "amount",
		MethodCol:    "method",
		ReferenceCol: "reference",
		NotesCol:     "notes",
		DateLayouts:  []string{"02-01-2006", "02/01/2006", "2006-01-02"},
		Decimal:      decimalComma,
	},
	{
		Name:         "ledger",
		Comma:        ',',
		InvoiceCol:   "invoice number",
		DateCol:      "payment date",
		AmountCol:    "amount",
		MethodCol:    "method",
		ReferenceCol: "reference",
		NotesCol:     "notes",
		DateLayouts:  []string{"2006-01-02", "01/02/2006"},
		Decimal:      decimalPoint,
	},
}

// DefaultMethod applies when a row leaves the method blank.
const DefaultMethod = payment.MethodBankTransfer

var methodAliases = map[string]payment.Method{
	"credit_card":   payment.MethodCreditCard,
	"credit card":   payment.MethodCreditCard,
	"card":          payment.MethodCreditCard,
	"cartão":        payment.MethodCreditCard,
	"bank_transfer": payment.MethodBankTransfer,
	"bank transfer": payment.MethodBankTransfer,
	"transfer":      payment.MethodBankTransfer,
	"transferência": payment.MethodBankTransfer,
	"wire":          payment.MethodBankTransfer,
	"cash":          payment.MethodCash,
	"numerário":     payment.MethodCash,
	"check":         payment.MethodCheck,
	"cheque":        payment.MethodCheck,
	"other":         payment.MethodOther,
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
