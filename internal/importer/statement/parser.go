package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/cardcycle/internal/encoding"
)

// Entry is one statement line. Charges are positive and credits (payments,
// refunds) negative, whatever the export's sign convention.
type Entry struct {
	Row          int
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Installment  int // 0 when the line carries no "n/m" marker
	Installments int
}

// Credit reports whether the line lowers the statement balance.
func (e Entry) Credit() bool {
	return e.Amount.IsNegative()
}

var installmentMarker = regexp.MustCompile(`(?i)\s*(?:-\s*)?(?:parc(?:ela)?\.?\s*)?(\d{1,3})\s*/\s*(\d{1,3})\s*$`)

// Parser reads card statement CSV exports. It auto-detects the export
// format by matching column headers against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, comma)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	}

	return nil, fmt.Errorf("no matching statement format found: expected columns for %s", profileNames())
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a profile using comma.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
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

// parseRows extracts entries from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Entry, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]
	amountIdx := cols[p.AmountCol]

	var entries []Entry

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based line number

		date, ok := parseDate(row, dateIdx, p.DateLayout)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		raw := cellValue(row, amountIdx)
		if raw == "" {
			continue
		}

		amount, err := p.parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q", rowNum, raw)
		}

		if amount.IsZero() {
			continue
		}

		if p.ChargesNegative {
			amount = amount.Neg()
		}

		e := Entry{Row: rowNum, Date: date, Description: desc, Amount: amount}
		e.Description, e.Installment, e.Installments = splitInstallment(desc)

		entries = append(entries, e)
	}

	return entries, nil
}

// splitInstallment strips a trailing "Parcela 2/10" or "02/10" marker.
func splitInstallment(desc string) (string, int, int) {
	m := installmentMarker.FindStringSubmatchIndex(desc)
	if m == nil {
		return desc, 0, 0
	}

	n, _ := strconv.Atoi(desc[m[2]:m[3]])
	total, _ := strconv.Atoi(desc[m[4]:m[5]])

	if total < 2 || n < 1 || n > total {
		return desc, 0, 0
	}

	base := strings.TrimSpace(desc[:m[0]])
	if base == "" {
		return desc, 0, 0
	}

	return base, n, total
}

// parseDate returns false for empty cells or unparseable values (footer
// rows, section titles).
func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func profileNames() string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}

	return strings.Join(names, ", ")
}
