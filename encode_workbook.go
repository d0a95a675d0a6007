package assetbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/assetbook/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The workbook persists as JSONL: one tagged JSON object per line. The
// "row" field discriminates the line type so the file stays greppable and
// diff-friendly under version control.
const (
	rowHolding = "holding"
	rowDaily   = "daily"
)

// holdingRow is a specialized struct for encoding/decoding holding lines.
type holdingRow struct {
	Row      string          `json:"row"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}

func (r holdingRow) holding() Holding {
	cur := r.Currency
	if cur == "" {
		cur = "USD"
	}
	return Holding{Symbol: r.Symbol, Name: r.Name, Quantity: r.Quantity, Price: M(r.Price, cur)}
}

// dailyRow is a specialized struct for encoding/decoding daily lines.
type dailyRow struct {
	Row    string          `json:"row"`
	Date   date.Date       `json:"date"`
	Cash   decimal.Decimal `json:"cash"`
	Gold   decimal.Decimal `json:"gold"`
	Stocks decimal.Decimal `json:"stocks"`
	Total  decimal.Decimal `json:"total"`
	NAV    float64         `json:"nav"`
	Note   string          `json:"note,omitempty"`
}

func (r dailyRow) snapshot() DailySnapshot {
	return DailySnapshot{
		On:     r.Date,
		Cash:   USD(r.Cash),
		Gold:   USD(r.Gold),
		Stocks: USD(r.Stocks),
		Total:  USD(r.Total),
		NAV:    r.NAV,
		Note:   r.Note,
	}
}

// DecodeWorkbook decodes a workbook from a stream of JSONL data, one tagged
// row per line, and returns it with the daily history sorted.
func DecodeWorkbook(r io.Reader) (*Workbook, error) {
	book := NewWorkbook()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Row string `json:"row"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify row in line %q: %w", string(lineBytes), err)
		}

		switch identifier.Row {
		case rowHolding:
			var temp holdingRow
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("could not decode holding line %q: %w", string(lineBytes), err)
			}
			book.AddHolding(temp.holding())
		case rowDaily:
			var temp dailyRow
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("could not decode daily line %q: %w", string(lineBytes), err)
			}
			book.UpsertDaily(temp.snapshot())
		default:
			return nil, fmt.Errorf("unknown row type %q in line %q", identifier.Row, string(lineBytes))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	return book, nil
}

// EncodeWorkbook persists a workbook to an io.Writer in canonical JSONL
// form: holding rows first in workbook order, then daily rows in
// chronological order.
func EncodeWorkbook(w io.Writer, book *Workbook) error {
	decimal.MarshalJSONWithoutQuotes = true

	for h := range book.Holdings() {
		row := holdingRow{
			Row:      rowHolding,
			Symbol:   h.Symbol,
			Name:     h.Name,
			Quantity: h.Quantity,
			Price:    h.Price.Decimal(),
		}
		if c := h.Price.Currency(); c != "USD" {
			row.Currency = c
		}
		if err := encodeRow(w, row); err != nil {
			return err
		}
	}
	for s := range book.Daily() {
		row := dailyRow{
			Row:    rowDaily,
			Date:   s.On,
			Cash:   s.Cash.Amount(),
			Gold:   s.Gold.Amount(),
			Stocks: s.Stocks.Amount(),
			Total:  s.Total.Amount(),
			NAV:    s.NAV,
			Note:   s.Note,
		}
		if err := encodeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// encodeRow marshals a single row to JSON and writes it followed by a
// newline, in JSONL format.
func encodeRow(w io.Writer, row any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal workbook row: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write workbook row: %w", err)
	}
	return nil
}
