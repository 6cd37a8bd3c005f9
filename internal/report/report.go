package report

import (
	"strconv"
	"strings"

	"repsig/internal/analysis/significance"
	"repsig/internal/profile"
)

// Report is everything needed to render one analysis: the title block,
// the omnibus result and the pairwise table with display labels.
type Report struct {
	Header     []string
	Layout     string
	Labels     []string
	Omnibus    significance.OmnibusResult
	Pairwise   *significance.PairwiseResult
	Summaries  []significance.MethodSummary
	Conditions []ConditionTable
	Manifest   Manifest
}

// ConditionTable is the pairwise result of one condition, e.g. gput=100
type ConditionTable struct {
	Label    string
	Pairwise *significance.PairwiseResult
}

// New assembles a report from an analysis run under prof
func New(prof profile.Profile, header []string, analysis *significance.Analysis, manifest Manifest) *Report {
	labels := make([]string, len(analysis.Pairwise.Methods))
	for i, m := range analysis.Pairwise.Methods {
		labels[i] = prof.Label(m)
	}

	manifest.Mode = prof.Mode
	manifest.Methods = len(labels)
	manifest.Rows = analysis.Matrix.Rows()

	conditions := make([]ConditionTable, len(analysis.Conditions))
	for i, c := range analysis.Conditions {
		conditions[i] = ConditionTable{Label: conditionLabel(c), Pairwise: c.Pairwise}
	}

	return &Report{
		Header:     header,
		Layout:     prof.Layout,
		Labels:     labels,
		Omnibus:    analysis.Omnibus,
		Pairwise:   analysis.Pairwise,
		Summaries:  analysis.Summaries,
		Conditions: conditions,
		Manifest:   manifest,
	}
}

// conditionLabel names a condition by the last segment of each key,
// so "AMA_predictive_value:gput" with 100 reads "gput=100".
func conditionLabel(c significance.ConditionPairwise) string {
	parts := make([]string, len(c.KeyNames))
	for i, name := range c.KeyNames {
		if idx := strings.LastIndex(name, ":"); idx >= 0 {
			name = name[idx+1:]
		}
		parts[i] = name + "=" + c.Keys[i].String()
	}
	return strings.Join(parts, ", ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
