package significance

import (
	"fmt"
	"math"
	"sort"

	"repsig/domain/core"
	"repsig/domain/replicate"

	"gonum.org/v1/gonum/integrate"
)

// Condition labels one matrix row
type Condition struct {
	Replicate int
	Keys      []replicate.Value // nil for area-under-curve rows
}

// Matrix holds one score per (condition, method). Values[i][j] belongs to
// Conditions[i] and Methods[j]; every cell is filled exactly once.
type Matrix struct {
	Methods    []string
	KeyNames   []string
	Conditions []Condition
	Values     [][]float64
}

// Rows returns the number of conditions
func (m *Matrix) Rows() int {
	return len(m.Conditions)
}

// Column returns every value of method j in row order
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.Values))
	for i, row := range m.Values {
		col[i] = row[j]
	}
	return col
}

// Columns returns the transposed matrix: one sample per method
func (m *Matrix) Columns() [][]float64 {
	cols := make([][]float64, len(m.Methods))
	for j := range m.Methods {
		cols[j] = m.Column(j)
	}
	return cols
}

// conditionIndex finds the unique row of each (replicate, key values) pair
type conditionIndex struct {
	table *replicate.Table
	keys  []string
}

func newConditionIndex(table *replicate.Table, keys []string) (*conditionIndex, error) {
	for _, k := range keys {
		if !table.HasColumn(k) {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownColumn, k)
		}
	}
	return &conditionIndex{table: table, keys: keys}, nil
}

// conditions enumerates distinct key combinations of replicate group 1 in
// first-appearance order. Every other group is expected to repeat them.
func (ci *conditionIndex) conditions() [][]replicate.Value {
	var out [][]replicate.Value
	for _, row := range ci.table.GroupRows(1) {
		values := make([]replicate.Value, len(ci.keys))
		for i, k := range ci.keys {
			values[i] = row[k]
		}
		if !containsCombination(out, values) {
			out = append(out, values)
		}
	}
	return out
}

func (ci *conditionIndex) lookup(group int, values []replicate.Value) (replicate.Row, error) {
	var match replicate.Row
	count := 0
	for _, row := range ci.table.Rows {
		if row.Group() != group || !rowMatches(row, ci.keys, values) {
			continue
		}
		match = row
		count++
	}

	switch {
	case count == 0:
		return nil, core.NewLookupError(core.ErrMissingRow, group, replicate.Describe(ci.keys, values))
	case count > 1:
		return nil, core.NewLookupError(core.ErrDuplicateRow, group, replicate.Describe(ci.keys, values))
	}
	return match, nil
}

// BuildMatrix pivots the table into one row per condition and replicate
// (conditions outer, replicates 1..replicates inner) and one column per method.
func BuildMatrix(table *replicate.Table, methods, keys []string, replicates int) (*Matrix, error) {
	ci, err := newConditionIndex(table, keys)
	if err != nil {
		return nil, err
	}

	m := &Matrix{Methods: methods, KeyNames: keys}
	for _, values := range ci.conditions() {
		for r := 1; r <= replicates; r++ {
			row, err := ci.lookup(r, values)
			if err != nil {
				return nil, err
			}
			scores, err := extractScores(row, methods, r)
			if err != nil {
				return nil, err
			}
			m.Conditions = append(m.Conditions, Condition{Replicate: r, Keys: values})
			m.Values = append(m.Values, scores)
		}
	}

	if m.Rows() == 0 {
		return nil, core.NewInputError("matrix", "replicate group 1 has no rows")
	}
	return m, nil
}

// BuildAreaMatrix reduces each replicate to the trapezoid-rule area under
// every method's curve, with column x as the abscissa. The result has one
// row per replicate.
func BuildAreaMatrix(table *replicate.Table, methods []string, x string, replicates int) (*Matrix, error) {
	ci, err := newConditionIndex(table, []string{x})
	if err != nil {
		return nil, err
	}

	conds := ci.conditions()
	if len(conds) < 2 {
		return nil, core.NewInputError("area", fmt.Sprintf("need at least 2 values of %s, got %d", x, len(conds)))
	}

	m := &Matrix{Methods: methods}
	for r := 1; r <= replicates; r++ {
		xs := make([]float64, len(conds))
		curves := make([][]float64, len(conds))
		for i, values := range conds {
			row, err := ci.lookup(r, values)
			if err != nil {
				return nil, err
			}
			xv, ok := values[0].Float64()
			if !ok {
				return nil, fmt.Errorf("%w: abscissa %s has non-numeric value %q", core.ErrFormat, x, values[0].Str)
			}
			if math.IsNaN(xv) || math.IsInf(xv, 0) {
				return nil, fmt.Errorf("%w: abscissa %s has non-finite value %q", core.ErrFormat, x, values[0].Str)
			}
			xs[i] = xv
			if curves[i], err = extractScores(row, methods, r); err != nil {
				return nil, err
			}
		}

		order := make([]int, len(xs))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

		sortedX := make([]float64, len(xs))
		for i, o := range order {
			sortedX[i] = xs[o]
		}

		areas := make([]float64, len(methods))
		for j := range methods {
			f := make([]float64, len(order))
			for i, o := range order {
				f[i] = curves[o][j]
			}
			areas[j] = integrate.Trapezoidal(sortedX, f)
		}

		m.Conditions = append(m.Conditions, Condition{Replicate: r})
		m.Values = append(m.Values, areas)
	}
	return m, nil
}

func extractScores(row replicate.Row, methods []string, group int) ([]float64, error) {
	scores := make([]float64, len(methods))
	for j, method := range methods {
		v, ok := row[method].Float64()
		if !ok {
			return nil, fmt.Errorf("%w: column %s, replicate %d: non-numeric value %q",
				core.ErrFormat, method, group, row[method].Str)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %s, replicate %d: non-finite value %q",
				core.ErrFormat, method, group, row[method].Str)
		}
		scores[j] = v
	}
	return scores, nil
}

func rowMatches(row replicate.Row, keys []string, values []replicate.Value) bool {
	for i, k := range keys {
		if !row[k].Equal(values[i]) {
			return false
		}
	}
	return true
}

func containsCombination(seen [][]replicate.Value, values []replicate.Value) bool {
	for _, s := range seen {
		match := true
		for i := range s {
			if !s[i].Equal(values[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
