package significance

import (
	"errors"
	"fmt"

	"repsig/domain/core"
	"repsig/domain/replicate"
	"repsig/internal"

	"github.com/montanaflynn/stats"
)

// Mode selects what one matrix row represents
type Mode string

const (
	// ModeRaw keeps every condition x replicate score as its own row
	ModeRaw Mode = "raw"
	// ModeAUC reduces each replicate to the area under the score curve
	ModeAUC Mode = "auc"
)

// Predicate decides whether a column name is accepted
type Predicate func(name string) bool

// Options configures one analysis
type Options struct {
	Metric        Predicate
	Exclude       Predicate
	ConditionKeys []string
	Replicates    int
	Mode          Mode
	// PerCondition adds a pairwise table for every condition, comparing
	// methods across replicates only
	PerCondition bool
}

// PairCell holds the comparison of a row method against a column method
type PairCell struct {
	MeanDiff float64
	PValue   float64
	W        float64
	N        int
	Err      error
}

// PairwiseResult is a square method x method table; diagonal cells are nil
type PairwiseResult struct {
	Methods []string
	Cells   [][]*PairCell
}

// Cell returns the comparison of method a against method b
func (p *PairwiseResult) Cell(a, b int) *PairCell {
	return p.Cells[a][b]
}

// Err joins every per-cell failure, or returns nil if all pairs were testable
func (p *PairwiseResult) Err() error {
	var errs []error
	for a := range p.Cells {
		for b := a + 1; b < len(p.Cells); b++ {
			if c := p.Cells[a][b]; c != nil && c.Err != nil {
				errs = append(errs, c.Err)
			}
		}
	}
	return errors.Join(errs...)
}

// MethodSummary describes one method's sample
type MethodSummary struct {
	Method string
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// ConditionPairwise is the pairwise table of one condition
type ConditionPairwise struct {
	KeyNames []string
	Keys     []replicate.Value
	Pairwise *PairwiseResult
}

// Analysis bundles every result of one run
type Analysis struct {
	Matrix     *Matrix
	Omnibus    OmnibusResult
	Pairwise   *PairwiseResult
	Summaries  []MethodSummary
	Conditions []ConditionPairwise // only with Options.PerCondition
}

// Err joins the cell errors of the pooled and every per-condition table
func (a *Analysis) Err() error {
	errs := []error{a.Pairwise.Err()}
	for _, c := range a.Conditions {
		if err := c.Pairwise.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", replicate.Describe(c.KeyNames, c.Keys), err))
		}
	}
	return errors.Join(errs...)
}

// Engine selects, pivots and tests replicate tables
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates a new significance engine
func NewEngine(logger *internal.Logger) *Engine {
	return &Engine{logger: logger}
}

// SelectMethods returns the columns accepted by Metric and rejected by Exclude
func SelectMethods(table *replicate.Table, metric, exclude Predicate) []string {
	return table.Select(func(name string) bool {
		if metric == nil || !metric(name) {
			return false
		}
		return exclude == nil || !exclude(name)
	})
}

// Analyze runs column selection, matrix construction, the omnibus test and
// all pairwise tests. Degenerate pairs do not fail the analysis; they are
// recorded on their cells and reported by Pairwise.Err.
func (e *Engine) Analyze(table *replicate.Table, opts Options) (*Analysis, error) {
	if opts.Replicates <= 0 {
		return nil, core.NewInputError("analysis", fmt.Sprintf("replicate count must be positive, got %d", opts.Replicates))
	}

	methods := SelectMethods(table, opts.Metric, opts.Exclude)
	if len(methods) == 0 {
		return nil, core.NewInputError("analysis", "no column matches the metric filter")
	}
	e.logger.Debug("[Engine] selected %d methods: %v", len(methods), methods)

	matrix, err := e.buildMatrix(table, methods, opts)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("[Engine] matrix has %d rows x %d methods (mode %s)", matrix.Rows(), len(methods), opts.mode())

	samples := matrix.Columns()
	omnibus, err := KruskalWallis(samples...)
	if err != nil {
		return nil, err
	}

	pairwise, err := Pairwise(methods, samples)
	if err != nil {
		return nil, err
	}
	if perr := pairwise.Err(); perr != nil {
		e.logger.Warn("[Engine] some pairs could not be tested: %v", perr)
	}

	summaries, err := summarize(methods, samples)
	if err != nil {
		return nil, err
	}

	e.logger.Info("[Engine] Kruskal-Wallis H=%.4f p=%.4g over %d methods", omnibus.H, omnibus.PValue, len(methods))

	analysis := &Analysis{
		Matrix:    matrix,
		Omnibus:   omnibus,
		Pairwise:  pairwise,
		Summaries: summaries,
	}
	if opts.PerCondition {
		raw := matrix
		if opts.mode() != ModeRaw {
			if raw, err = BuildMatrix(table, methods, opts.ConditionKeys, opts.Replicates); err != nil {
				return nil, err
			}
		}
		if analysis.Conditions, err = PairwiseByCondition(raw); err != nil {
			return nil, err
		}
		e.logger.Debug("[Engine] %d per-condition pairwise tables", len(analysis.Conditions))
	}
	return analysis, nil
}

// PairwiseByCondition splits a raw matrix into its conditions and runs
// Pairwise on the replicate rows of each one.
func PairwiseByCondition(m *Matrix) ([]ConditionPairwise, error) {
	if len(m.KeyNames) == 0 {
		return nil, core.NewInputError("pairwise", "per-condition tables need at least one condition key")
	}

	var out []ConditionPairwise
	for start := 0; start < m.Rows(); {
		keys := m.Conditions[start].Keys
		end := start + 1
		for end < m.Rows() && sameKeys(m.Conditions[end].Keys, keys) {
			end++
		}

		samples := make([][]float64, len(m.Methods))
		for j := range m.Methods {
			samples[j] = make([]float64, 0, end-start)
			for i := start; i < end; i++ {
				samples[j] = append(samples[j], m.Values[i][j])
			}
		}
		pairwise, err := Pairwise(m.Methods, samples)
		if err != nil {
			return nil, err
		}

		out = append(out, ConditionPairwise{KeyNames: m.KeyNames, Keys: keys, Pairwise: pairwise})
		start = end
	}
	return out, nil
}

func sameKeys(a, b []replicate.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (o Options) mode() Mode {
	if o.Mode == "" {
		return ModeRaw
	}
	return o.Mode
}

func (e *Engine) buildMatrix(table *replicate.Table, methods []string, opts Options) (*Matrix, error) {
	switch opts.mode() {
	case ModeRaw:
		return BuildMatrix(table, methods, opts.ConditionKeys, opts.Replicates)
	case ModeAUC:
		if len(opts.ConditionKeys) == 0 {
			return nil, core.NewInputError("area", "area mode needs a condition key as abscissa")
		}
		return BuildAreaMatrix(table, methods, opts.ConditionKeys[0], opts.Replicates)
	default:
		return nil, core.NewInputError("analysis", fmt.Sprintf("unknown mode %q", opts.Mode))
	}
}

// Pairwise compares every ordered pair of distinct methods with a
// Wilcoxon signed-rank test on their row-aligned samples.
func Pairwise(methods []string, samples [][]float64) (*PairwiseResult, error) {
	if len(methods) != len(samples) {
		return nil, core.NewInputError("pairwise", fmt.Sprintf("%d methods but %d samples", len(methods), len(samples)))
	}

	means := make([]float64, len(samples))
	for i, s := range samples {
		mean, err := stats.Mean(s)
		if err != nil {
			return nil, core.NewInputError("pairwise", fmt.Sprintf("%s: %v", methods[i], err))
		}
		means[i] = mean
	}

	result := &PairwiseResult{Methods: methods, Cells: make([][]*PairCell, len(methods))}
	for a := range methods {
		result.Cells[a] = make([]*PairCell, len(methods))
		for b := range methods {
			if a == b {
				continue
			}
			cell := &PairCell{MeanDiff: means[a] - means[b]}
			w, err := WilcoxonSignedRank(samples[a], samples[b])
			switch {
			case errors.Is(err, core.ErrDegenerateSample):
				cell.Err = core.NewDegenerateSampleError(methods[a], methods[b])
			case err != nil:
				return nil, err
			default:
				cell.W = w.W
				cell.PValue = w.PValue
				cell.N = w.N
			}
			result.Cells[a][b] = cell
		}
	}
	return result, nil
}

func summarize(methods []string, samples [][]float64) ([]MethodSummary, error) {
	out := make([]MethodSummary, len(methods))
	for i, s := range samples {
		data := stats.Float64Data(s)
		mean, err := data.Mean()
		if err != nil {
			return nil, err
		}
		median, _ := data.Median()
		stdDev, _ := data.StandardDeviation()
		min, _ := data.Min()
		max, _ := data.Max()
		out[i] = MethodSummary{Method: methods[i], Mean: mean, Median: median, StdDev: stdDev, Min: min, Max: max}
	}
	return out, nil
}
