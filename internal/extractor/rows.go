package extractor

import (
	"errors"
	"strings"

	"budgetgrader/internal/domain"
)

// minDataCells is the shortest row treated as a data row.
const minDataCells = 3

var errShortRow = errors.New("mapped column outside row")

// rowReader reads mapped cells from a single data row. The first out-of-range
// lookup is remembered so the caller can drop the whole row.
type rowReader struct {
	row  []string
	cols ColumnMap
	err  error
}

func (r *rowReader) number(field string) *float64 {
	idx, ok := r.cols[field]
	if !ok {
		return nil
	}
	if idx >= len(r.row) {
		r.err = errShortRow
		return nil
	}
	return ParseNumber(r.row[idx])
}

func (r *rowReader) description() string {
	idx, ok := r.cols[domain.FieldDescription]
	if !ok {
		idx = 0
	}
	if idx >= len(r.row) {
		r.err = errShortRow
		return ""
	}
	return CleanText(r.row[idx])
}

func keepItem(description string) bool {
	return description != "" && !IsSummaryLabel(description)
}

// ParseFixedRows turns the data rows of a fixed-expenses table into line items.
func ParseFixedRows(table domain.RawTable) []domain.FixedExpenseItem {
	if len(table) < 2 {
		return nil
	}
	cols := MapColumns(TableFixed, table[0])
	items := make([]domain.FixedExpenseItem, 0, len(table)-1)
	for _, row := range table[1:] {
		if len(row) < minDataCells {
			continue
		}
		r := &rowReader{row: row, cols: cols}
		item := domain.FixedExpenseItem{
			Description:              r.description(),
			FiveMonthConsumption:     r.number(domain.FieldFiveMonthConsumption),
			MonthlyConsumption:       r.number(domain.FieldMonthlyConsumption),
			Year2024Consumption:      r.number(domain.FieldYear2024Consumption),
			InflationRate:            r.number(domain.FieldInflationRate),
			InflationAmount:          r.number(domain.FieldInflationAmount),
			Estimated2025Consumption: r.number(domain.FieldEstimated2025Consumption),
		}
		if r.err != nil || !keepItem(item.Description) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ParseVariableRows turns the data rows of a variable-expenses table into line items.
func ParseVariableRows(table domain.RawTable) []domain.VariableExpenseItem {
	if len(table) < 2 {
		return nil
	}
	cols := MapColumns(TableVariable, table[0])
	items := make([]domain.VariableExpenseItem, 0, len(table)-1)
	for _, row := range table[1:] {
		if len(row) < minDataCells {
			continue
		}
		r := &rowReader{row: row, cols: cols}
		item := domain.VariableExpenseItem{
			Description:                    r.description(),
			FiveMonthConsumption:           r.number(domain.FieldFiveMonthConsumption),
			FiveMonthPatientDays:           r.number(domain.FieldFiveMonthPatientDays),
			ConsumptionPerPatientDay:       r.number(domain.FieldConsumptionPerPatientDay),
			Estimated2025YearlyPatientDays: r.number(domain.FieldEstimated2025YearlyPatientDays),
			AmountPerYearlyPatientDays:     r.number(domain.FieldAmountPerYearlyPatientDays),
			InflationRate:                  r.number(domain.FieldInflationRate),
			InflationAmount:                r.number(domain.FieldInflationAmount),
			TotalAmount:                    r.number(domain.FieldTotalAmount),
		}
		if r.err != nil || !keepItem(item.Description) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ParseTotalRow returns the first usable data row of a totals table.
// The zero record is returned when no row qualifies.
func ParseTotalRow(table domain.RawTable) domain.TotalExpenseRecord {
	if len(table) < 2 {
		return domain.TotalExpenseRecord{}
	}
	cols := MapColumns(TableTotal, table[0])
	for _, row := range table[1:] {
		if len(row) < minDataCells {
			continue
		}
		r := &rowReader{row: row, cols: cols}
		rec := domain.TotalExpenseRecord{
			FiveMonthConsumption: r.number(domain.FieldFiveMonthConsumption),
			YearlyConsumption:    r.number(domain.FieldYearlyConsumption),
			InflationRate:        r.number(domain.FieldInflationRate),
			InflationAmount:      r.number(domain.FieldInflationAmount),
			TotalAmount:          r.number(domain.FieldTotalAmount),
		}
		if r.err != nil {
			continue
		}
		return rec
	}
	return domain.TotalExpenseRecord{}
}

// ExtractPatientDays finds the first cell mentioning "patient days" that has a
// right-hand neighbour and parses that neighbour.
func ExtractPatientDays(table domain.RawTable) *float64 {
	for _, row := range table {
		for i, cell := range row {
			if !strings.Contains(strings.ToLower(cell), "patient days") {
				continue
			}
			if i+1 < len(row) {
				return ParseNumber(row[i+1])
			}
		}
	}
	return nil
}
