package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"gosample/adapters/rng"
	"gosample/domain/sampling"
)

// LedgerGeneratorConfig configures the synthetic receivables ledger
type LedgerGeneratorConfig struct {
	InvoiceCount    int     `json:"invoice_count"`
	MedianAmount    float64 `json:"median_amount"`     // Median of the log-normal invoice amounts
	Sigma           float64 `json:"sigma"`             // Log-scale spread
	HighValueCount  int     `json:"high_value_count"`  // Extra invoices at HighValueAmount
	HighValueAmount float64 `json:"high_value_amount"` // Amount of each high-value invoice
	CreditNoteRate  float64 `json:"credit_note_rate"`  // Share of negative amounts
	ZeroRate        float64 `json:"zero_rate"`         // Share of zero amounts
	BlankRate       float64 `json:"blank_rate"`        // Share of blank amount cells
	Seed            uint64  `json:"seed"`
}

// DefaultLedgerConfig returns a mid-sized ledger with a few large invoices and some noise rows
func DefaultLedgerConfig() LedgerGeneratorConfig {
	return LedgerGeneratorConfig{
		InvoiceCount:    500,
		MedianAmount:    1200,
		Sigma:           0.9,
		HighValueCount:  5,
		HighValueAmount: 75000,
		CreditNoteRate:  0.03,
		ZeroRate:        0.01,
		BlankRate:       0.01,
		Seed:            42,
	}
}

// LedgerRow is one generated invoice
type LedgerRow struct {
	InvoiceNo string
	Customer  string
	Amount    float64
	Blank     bool // Amount cell left empty
}

// LedgerHeaders are the column headers written for generated ledgers
var LedgerHeaders = []string{"Invoice No.", "Customer", "Amount"}

// LedgerGenerator generates receivables populations for sampling tests
type LedgerGenerator struct {
	config LedgerGeneratorConfig
	rng    *rand.Rand
}

// NewLedgerGenerator creates a new ledger generator
func NewLedgerGenerator(config LedgerGeneratorConfig) *LedgerGenerator {
	return &LedgerGenerator{
		config: config,
		rng:    rng.NewSeeded(config.Seed, "ledger"),
	}
}

// GenerateLedger generates the invoices; high-value invoices come first
func (g *LedgerGenerator) GenerateLedger() []LedgerRow {
	rows := make([]LedgerRow, 0, g.config.HighValueCount+g.config.InvoiceCount)

	for i := 0; i < g.config.HighValueCount; i++ {
		rows = append(rows, LedgerRow{
			InvoiceNo: fmt.Sprintf("INV-%05d", len(rows)+1),
			Customer:  g.randomCustomer(),
			Amount:    g.config.HighValueAmount,
		})
	}

	mu := math.Log(g.config.MedianAmount)
	for i := 0; i < g.config.InvoiceCount; i++ {
		row := LedgerRow{
			InvoiceNo: fmt.Sprintf("INV-%05d", len(rows)+1),
			Customer:  g.randomCustomer(),
		}

		switch u := g.rng.Float64(); {
		case u < g.config.BlankRate:
			row.Blank = true
		case u < g.config.BlankRate+g.config.ZeroRate:
			row.Amount = 0
		default:
			// Log-normal amount via the normal quantile of a draw in (0, 1)
			p := g.rng.Float64()
			for p == 0 {
				p = g.rng.Float64()
			}
			row.Amount = math.Round(math.Exp(mu+g.config.Sigma*distuv.UnitNormal.Quantile(p))*100) / 100
			if row.Amount == 0 {
				row.Amount = 0.01
			}
			if g.rng.Float64() < g.config.CreditNoteRate {
				row.Amount = -row.Amount
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// Usable counts the rows a population parser keeps: non-blank, non-zero amounts
func Usable(rows []LedgerRow) (count int, value float64) {
	for _, r := range rows {
		if r.Blank || r.Amount == 0 {
			continue
		}
		count++
		value += math.Abs(r.Amount)
	}
	return count, value
}

// LedgerCSV renders rows as CSV with the standard ledger headers
func LedgerCSV(rows []LedgerRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(LedgerHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.InvoiceNo, r.Customer, amountCell(r)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// LedgerWorkbook renders one worksheet per ledger, in the given sheet order
func LedgerWorkbook(order []string, ledgers map[string][]LedgerRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		header := []interface{}{LedgerHeaders[0], LedgerHeaders[1], LedgerHeaders[2]}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, err
		}
		for r, row := range ledgers[name] {
			var amount interface{} = row.Amount
			if row.Blank {
				amount = ""
			}
			values := []interface{}{row.InvoiceNo, row.Customer, amount}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AuditedSampleCSV renders a completed sample file for the selected items. Each
// item is overstated with probability errorRate by a tainting drawn from (0, maxTainting].
// The count of injected errors is returned alongside the file.
func (g *LedgerGenerator) AuditedSampleCSV(selected []sampling.SelectedSample, errorRate, maxTainting float64) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Invoice No.", "Amount", "Audited Amount"}); err != nil {
		return nil, 0, err
	}

	errorsInjected := 0
	for _, s := range selected {
		recorded := s.Item.RecordedAmount
		audited := recorded
		if g.rng.Float64() < errorRate {
			tainting := maxTainting * (1 - g.rng.Float64())
			audited = math.Round(recorded*(1-tainting)*100) / 100
			if math.Abs(recorded-audited) >= 0.005 {
				errorsInjected++
			}
		}
		record := []string{
			s.Item.ItemID,
			strconv.FormatFloat(recorded, 'f', 2, 64),
			strconv.FormatFloat(audited, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	return buf.Bytes(), errorsInjected, w.Error()
}

func amountCell(r LedgerRow) string {
	if r.Blank {
		return ""
	}
	return strconv.FormatFloat(r.Amount, 'f', 2, 64)
}

var customers = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella Ltd", "Hooli", "Vandelay Industries",
	"Stark Supplies", "Wayne Logistics", "Soylent Foods", "Tyrell Systems",
}

func (g *LedgerGenerator) randomCustomer() string {
	return customers[g.rng.IntN(len(customers))]
}
