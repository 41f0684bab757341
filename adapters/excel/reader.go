package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gomonte/domain/core"
	"gomonte/domain/dist"
)

// Column headers a payout table must carry. Matching is case-insensitive
// and the label and proposal columns are optional: a table without a
// proposal column loads in plain Monte Carlo form.
const (
	headerLabel       = "label"
	headerProbability = "probability"
	headerPayoff      = "payoff"
	headerProposal    = "proposal"
)

// TableLoader reads payout tables from Excel and CSV files. File type is
// decided by extension, everything else by the header row.
type TableLoader struct{}

// NewTableLoader creates a loader for xlsx and csv payout tables.
func NewTableLoader() *TableLoader {
	return &TableLoader{}
}

// Load reads, parses, and validates the payout table at path.
func (l *TableLoader) Load(ctx context.Context, path string) (*dist.Distribution, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, core.NewTableError(path, err)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, core.NewTableError(path, err)
	}

	d, err := parseTable(path, rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[TableLoader] %s loaded (%d outcomes, weighted=%v)", path, d.Len(), d.Weighted())
	return d, nil
}

// readExcelRows reads all rows of Sheet1.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

// readCSVRows reads the whole CSV file.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return csv.NewReader(file).ReadAll()
}

// parseTable converts raw string rows into a validated distribution.
func parseTable(path string, rows [][]string) (*dist.Distribution, error) {
	if len(rows) < 2 {
		return nil, core.NewTableError(path, fmt.Errorf("need a header row and at least one outcome row"))
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}

	probCol, ok := columns[headerProbability]
	if !ok {
		return nil, core.NewTableError(path, fmt.Errorf("missing %q column", headerProbability))
	}
	payoffCol, ok := columns[headerPayoff]
	if !ok {
		return nil, core.NewTableError(path, fmt.Errorf("missing %q column", headerPayoff))
	}
	labelCol, hasLabel := columns[headerLabel]
	proposalCol, hasProposal := columns[headerProposal]

	outcomes := make([]dist.Outcome, 0, len(rows)-1)
	for i, row := range rows[1:] {
		o := dist.Outcome{}
		if hasLabel {
			o.Label = strings.TrimSpace(cellAt(row, labelCol))
		}

		var err error
		if o.Probability, err = parseCell(row, probCol); err != nil {
			return nil, core.NewTableError(path, fmt.Errorf("row %d: %s: %v", i+2, headerProbability, err))
		}
		if o.Payoff, err = parseCell(row, payoffCol); err != nil {
			return nil, core.NewTableError(path, fmt.Errorf("row %d: %s: %v", i+2, headerPayoff, err))
		}
		if hasProposal {
			if o.Proposal, err = parseCell(row, proposalCol); err != nil {
				return nil, core.NewTableError(path, fmt.Errorf("row %d: %s: %v", i+2, headerProposal, err))
			}
		}

		outcomes = append(outcomes, o)
	}

	if hasProposal {
		return dist.New(outcomes)
	}
	return dist.Unweighted(outcomes)
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func parseCell(row []string, col int) (float64, error) {
	raw := strings.TrimSpace(cellAt(row, col))
	if raw == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(raw, 64)
}
