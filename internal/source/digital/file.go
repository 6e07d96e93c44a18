package digital

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/receipts/internal/encoding"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// FileFeed serves digital receipts from a CSV export. The file is re-read on
// every list so a refresh picks up a newer export. Matches are kept in memory
// and laid over the file contents.
type FileFeed struct {
	path string

	mu      sync.Mutex
	matched map[string]uuid.UUID
}

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{path: path, matched: make(map[string]uuid.UUID)}
}

func (f *FileFeed) ListDigitalReceipts(ctx context.Context) ([]receipt.DigitalReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", receipt.ErrSourceUnavailable, f.path, err)
	}
	defer file.Close()

	rows, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range rows {
		if entryID, ok := f.matched[rows[i].ID]; ok {
			rows[i].Status = string(receipt.StatusMatched)
			rows[i].MatchedTransactionID = new(entryID.String())
		}
	}

	return rows, nil
}

func (f *FileFeed) MarkMatched(_ context.Context, id string, entryID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.matched[id] = entryID

	return nil
}

// Parse reads a receipt CSV export, detecting charset, separator and column
// layout. Rows without a usable date or amount (totals, footers) are skipped.
func Parse(r io.Reader) ([]receipt.DigitalReceipt, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = separator(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, errors.New("no matching receipt export format: expected id, merchant, amount and date columns")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// separator picks ';' or ',' by frequency near the top of the file.
func separator(data string) rune {
	head := data[:min(len(data), 4096)]
	if strings.Count(head, ";") > strings.Count(head, ",") {
		return ';'
	}

	return ','
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.ToLower(strings.TrimSpace(cell)); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
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

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]receipt.DigitalReceipt, error) {
	var out []receipt.DigitalReceipt

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(cell(row, cols, p.DateCol))
		if !ok {
			continue
		}

		amount, ok := parseAmount(cell(row, cols, p.AmountCol))
		if !ok {
			continue
		}

		id := cell(row, cols, p.IDCol)
		if id == "" {
			return nil, fmt.Errorf("row %d: missing receipt id", rowNum)
		}

		d := receipt.DigitalReceipt{
			ID:        id,
			Merchant:  cell(row, cols, p.MerchantCol),
			Amount:    amount,
			Date:      date,
			Category:  cell(row, cols, p.CategoryCol),
			Status:    strings.ToLower(cell(row, cols, p.StatusCol)),
			CreatedAt: date,
		}

		if m := cell(row, cols, p.MatchedCol); m != "" {
			d.MatchedTransactionID = &m
		}

		out = append(out, d)
	}

	return out, nil
}

func cell(row []string, cols colIndex, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

var dateLayouts = []string{
	time.DateOnly,
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount accepts "1.234,56" as well as "1,234.56". Receipts are
// purchases, so the sign is dropped.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€"))
	if s == "" {
		return decimal.Decimal{}, false
	}

	var clean string
	if sep := strings.LastIndexAny(s, ".,"); sep >= 0 && len(s)-sep-1 <= 2 {
		clean = strings.NewReplacer(".", "", ",", "").Replace(s[:sep]) + "." + s[sep+1:]
	} else {
		clean = strings.NewReplacer(".", "", ",", "").Replace(s)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(clean, " ", ""))
	if err != nil || d.IsZero() {
		return decimal.Decimal{}, false
	}

	return d.Abs(), true
}
