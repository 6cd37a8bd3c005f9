package replicate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GroupColumn is the synthetic column holding each row's 1-based table index.
const GroupColumn = "replicate_group"

// Kind classifies a parsed cell
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Value is one typed cell of a replicate table
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

// ParseValue infers a cell type: integer, then float, then string.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i, Str: s}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Kind: KindFloat, Float: f, Str: s}
	}
	return Value{Kind: KindString, Str: s}
}

// IntValue builds an integer cell
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i, Str: strconv.FormatInt(i, 10)}
}

// FloatValue builds a float cell
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f, Str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// IsNumeric reports whether the cell parsed as a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// Float64 returns the numeric value of the cell
func (v Value) Float64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return math.NaN(), false
	}
}

// Equal compares numerically when both cells are numbers, textually otherwise
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.Float64()
		b, _ := o.Float64()
		return a == b
	}
	return v.Kind == o.Kind && v.Str == o.Str
}

func (v Value) String() string {
	return v.Str
}

// Row maps column name to cell
type Row map[string]Value

// Group returns the replicate group of the row, or 0 if absent
func (r Row) Group() int {
	v, ok := r[GroupColumn]
	if !ok || v.Kind != KindInt {
		return 0
	}
	return int(v.Int)
}

// Table is the long-form union of every replicate table in a file.
// Columns[0] is always GroupColumn.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is part of the schema
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Groups returns the number of distinct replicate groups
func (t *Table) Groups() int {
	max := 0
	for _, row := range t.Rows {
		if g := row.Group(); g > max {
			max = g
		}
	}
	return max
}

// GroupRows returns the rows of one replicate group in file order
func (t *Table) GroupRows(group int) []Row {
	var rows []Row
	for _, row := range t.Rows {
		if row.Group() == group {
			rows = append(rows, row)
		}
	}
	return rows
}

// Select returns schema columns accepted by keep, in header order
func (t *Table) Select(keep func(string) bool) []string {
	var cols []string
	for _, c := range t.Columns {
		if c == GroupColumn {
			continue
		}
		if keep(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Describe formats key values as "k=v" pairs for messages
func Describe(keys []string, values []Value) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, values[i])
	}
	return strings.Join(parts, ",")
}
