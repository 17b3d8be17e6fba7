package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/invoiceai/internal/encoding"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

var ErrUnknownFormat = errors.New("no matching payment CSV format: expected an invoice, date and amount column")

// Row is one data line. Err is set when the line could not be read into a
// payment; the other fields are then best effort.
type Row struct {
	Line          int
	InvoiceNumber string
	Date          time.Time
	Amount        decimal.Decimal
	Method        payment.Method
	Reference     *string
	Notes         *string
	Err           error
}

type Sheet struct {
	Charset string
	Profile string
	Rows    []Row
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Sheet, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	comma, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var recs []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		recs = append(recs, record{line: line, cells: cells})
	}

	profile, cols, headerIdx := detectProfile(recs, comma)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	sheet := &Sheet{Charset: charset, Profile: profile.Name}

	for _, rec := range recs[headerIdx+1:] {
		if blank(rec.cells) {
			continue
		}

		sheet.Rows = append(sheet.Rows, parseRow(profile, cols, rec))
	}

	return sheet, nil
}

// record is a CSV row with its 1-based line in the file.
type record struct {
	line  int
	cells []string
}

// sniffDelimiter picks ';' or ',' from the first non-empty line. Ties go
// to ';'.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	for n := 64; n <= 64*1024; n *= 2 {
		buf, err := br.Peek(n)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return 0, fmt.Errorf("peek: %w", err)
		}

		text := strings.TrimLeft(string(buf), "\r\n")
		line, _, complete := strings.Cut(text, "\n")

		if complete || err != nil {
			if strings.Count(line, ",") > strings.Count(line, ";") {
				return ',', nil
			}

			return ';', nil
		}
	}

	return ';', nil
}

type colIndex map[string]int

func detectProfile(recs []record, comma rune) (*Profile, colIndex, int) {
	for recIdx, rec := range recs {
		cols := make(colIndex)

		for i, cell := range rec.cells {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, recIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRow(p *Profile, cols colIndex, rec record) Row {
	row := rec.cells
	r := Row{Line: rec.line, InvoiceNumber: cell(row, cols, p.InvoiceCol)}

	var errs []string

	if r.InvoiceNumber == "" {
		errs = append(errs, "missing invoice number")
	}

	if date, err := parseDate(cell(row, cols, p.DateCol), p.DateLayouts); err != nil {
		errs = append(errs, err.Error())
	} else {
		r.Date = date
	}

	if amount, err := parseAmount(cell(row, cols, p.AmountCol), p.Decimal); err != nil {
		errs = append(errs, err.Error())
	} else {
		r.Amount = amount
	}

	if method, err := parseMethod(cell(row, cols, p.MethodCol)); err != nil {
		errs = append(errs, err.Error())
	} else {
		r.Method = method
	}

	r.Reference = optional(cell(row, cols, p.ReferenceCol))
	r.Notes = optional(cell(row, cols, p.NotesCol))

	if len(errs) > 0 {
		r.Err = errors.New(strings.Join(errs, "; "))
	}

	return r
}

func parseDate(s string, layouts []string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseAmount reads an amount in the profile's decimal style. Currency
// symbols and spaces are ignored.
func parseAmount(s string, style decimalStyle) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errors.New("missing amount")
	}

	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '€', '$', '£':
			return -1
		}
		return r
	}, s)

	switch style {
	case decimalComma:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case decimalPoint:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", s)
	}

	return d.Round(2), nil
}

func parseMethod(s string) (payment.Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}

	if m, ok := methodAliases[strings.ToLower(s)]; ok {
		return m, nil
	}

	return "", fmt.Errorf("unknown payment method %q", s)
}

func cell(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if name == "" || !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
