// Package aggregate recomputes derived line-item values for master/detail
// forms.
package aggregate

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// Columns locates the roles the aggregator needs. Missing roles are -1.
type Columns struct {
	Quantity  int
	UnitPrice int
	Amount    int
}

// Locate resolves the quantity, unit price and amount column positions.
func Locate(columns []model.DetailColumn) Columns {
	return Columns{
		Quantity:  model.ColumnIndex(columns, model.RoleQuantity),
		UnitPrice: model.ColumnIndex(columns, model.RoleUnitPrice),
		Amount:    model.ColumnIndex(columns, model.RoleAmount),
	}
}

// Complete reports whether all three columns are present.
func (c Columns) Complete() bool {
	return c.Quantity >= 0 && c.UnitPrice >= 0 && c.Amount >= 0
}

// Recompute sets every row's amount to round(quantity * unit price, 2) and
// returns the updated rows with their total. Unparsable quantities or prices
// count as zero. Without all three columns the rows come back unchanged and
// the total is zero. The input slice is never modified.
func Recompute(columns []model.DetailColumn, rows []model.DetailRow) ([]model.DetailRow, float64) {
	out := model.CloneRows(rows)
	loc := Locate(columns)
	if !loc.Complete() {
		return out, 0
	}

	var total float64
	for i, row := range out {
		if len(row) < len(columns) {
			padded := make(model.DetailRow, len(columns))
			copy(padded, row)
			row = padded
		}
		amount := Round2(ParseNumber(row.Value(loc.Quantity)) * ParseNumber(row.Value(loc.UnitPrice)))
		row[loc.Amount] = FormatAmount(amount)
		out[i] = row
		total += amount
	}
	return out, Round2(total)
}

// Total sums the amount column without rewriting rows.
func Total(columns []model.DetailColumn, rows []model.DetailRow) float64 {
	_, total := Recompute(columns, rows)
	return total
}

// ParseNumber parses a trimmed decimal. Anything that is not a finite number
// reads as zero.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

// FormatAmount renders v with the shortest representation that round trips,
// always keeping a fractional part: 20 becomes "20.0", 19.99 stays "19.99".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
