package report

import (
	"strings"
	"testing"

	"repsig/domain/core"
	"repsig/domain/replicate"
	"repsig/internal/analysis/significance"
	"repsig/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleReport compares three methods where the last two are identical,
// so the mafft/muscle pair is degenerate.
func sampleReport(t *testing.T, layout string) *Report {
	t.Helper()
	methods := []string{"vs_refmsacons:refiner", "vs_refmsacons:mafft", "vs_refmsacons:muscle"}
	samples := [][]float64{
		{0.91, 0.88, 0.93, 0.90},
		{0.81, 0.80, 0.85, 0.79},
		{0.81, 0.80, 0.85, 0.79},
	}
	pairwise, err := significance.Pairwise(methods, samples)
	require.NoError(t, err)
	omnibus, err := significance.KruskalWallis(samples...)
	require.NoError(t, err)

	return &Report{
		Header:   []string{"", "Title", ""},
		Layout:   layout,
		Labels:   []string{"refiner", "mafft", "muscle"},
		Omnibus:  omnibus,
		Pairwise: pairwise,
		Manifest: NewManifest("replicates.csv", core.NewHash([]byte("x")), "consensus"),
	}
}

func render(t *testing.T, format string, r *Report) string {
	t.Helper()
	rd, err := NewRenderer(format)
	require.NoError(t, err)
	out, err := RenderString(rd, r)
	require.NoError(t, err)
	return out
}

func TestNewRenderer_Unknown(t *testing.T) {
	_, err := NewRenderer("html")
	assert.Error(t, err)
}

func TestTextRenderer_Square(t *testing.T) {
	r := sampleReport(t, profile.LayoutSquare)
	out := render(t, "text", r)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "Title", lines[1])
	assert.Equal(t, "Kruskal-Wallis H-test", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "    H="+formatFloat(r.Omnibus.H)+", p="), lines[4])
	assert.Equal(t, "Wilcoxon signed rank test: mean_diff [p-val]", lines[6])

	header := lines[7]
	assert.Equal(t, strings.Repeat(" ", 4+squareWidth)+"refiner", header[:4+squareWidth+len("refiner")])

	// every matrix line has the same column grid
	refiner := lines[8]
	assert.True(t, strings.HasPrefix(refiner, "    refiner"), refiner)
	assert.Len(t, refiner, 4+4*squareWidth)
	assert.Equal(t, strings.Repeat(" ", squareWidth), refiner[4+squareWidth:4+2*squareWidth])
	assert.Contains(t, refiner, "  0.09 [")

	mafft := lines[9]
	assert.Contains(t, mafft, " -0.09 [")
	assert.Contains(t, mafft, "degenerate")
	assert.Equal(t, strings.Index(header, "refiner"), strings.Index(mafft, "-0.09")-1)
}

func TestTextRenderer_Upper(t *testing.T) {
	out := render(t, "text", sampleReport(t, profile.LayoutUpper))

	assert.Contains(t, out, "Wilcoxon signed rank test:\n")
	assert.NotContains(t, out, "mean_diff")

	lines := strings.Split(out, "\n")
	var matrix []string
	for i, l := range lines {
		if l == "Wilcoxon signed rank test:" {
			matrix = lines[i+1 : i+4]
			break
		}
	}
	require.Len(t, matrix, 3)
	assert.NotContains(t, matrix[0], "refiner")
	assert.Contains(t, matrix[0], "mafft")
	assert.Contains(t, matrix[0], "muscle")
	assert.True(t, strings.HasPrefix(matrix[1], "    refiner"))
	assert.Contains(t, matrix[1], "0.125")
	assert.True(t, strings.HasPrefix(matrix[2], "    mafft"))
	assert.Contains(t, matrix[2], "degenerate")
}

func TestCSVRenderer_Square(t *testing.T) {
	r := sampleReport(t, profile.LayoutSquare)
	out := render(t, "csv", r)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "", lines[0])
	assert.Equal(t, "Title", lines[1])
	assert.Equal(t, "Kruskal-Wallis H-test", lines[3])
	assert.Equal(t, ",H =,"+formatFloat(r.Omnibus.H)+",p =,"+formatFloat(r.Omnibus.PValue), lines[4])
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "Wilcoxon signed rank test: mean_diff [p-val]", lines[6])
	assert.Equal(t, ",refiner,mafft,muscle", lines[7])
	assert.Equal(t, "refiner,,0.09 [1.2e-01],0.09 [1.2e-01]", lines[8])
	assert.Equal(t, "mafft,-0.09 [1.2e-01],,degenerate", lines[9])
	assert.Equal(t, "muscle,-0.09 [1.2e-01],degenerate,", lines[10])
}

func TestCSVRenderer_Upper(t *testing.T) {
	out := render(t, "csv", sampleReport(t, profile.LayoutUpper))

	assert.Contains(t, out, "Wilcoxon signed rank test:\n,mafft,muscle\n")
	assert.Contains(t, out, "refiner,0.125,0.125\n")
	assert.Contains(t, out, "mafft,,degenerate\n")
}

func TestRender_SingleMethodUpper(t *testing.T) {
	pairwise, err := significance.Pairwise([]string{"a"}, [][]float64{{1, 2}})
	require.NoError(t, err)
	r := &Report{Layout: profile.LayoutUpper, Labels: []string{"a"}, Pairwise: pairwise}

	for _, format := range []string{"text", "csv"} {
		out := render(t, format, r)
		assert.Contains(t, out, "Kruskal-Wallis H-test")
		assert.NotContains(t, out, "Wilcoxon")
	}
}

func TestCSVRenderer_HeaderUnquoted(t *testing.T) {
	r := sampleReport(t, profile.LayoutSquare)
	path := `runs/a,b/DNATransTree-1-"x"-R3S-eval/replicates.csv`
	r.Header = []string{"", "Data File: " + path, ""}

	lines := strings.Split(render(t, "csv", r), "\n")
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "Data File: "+path, lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "Kruskal-Wallis H-test", lines[3])
}

func conditionsReport(t *testing.T) *Report {
	t.Helper()
	r := sampleReport(t, profile.LayoutConditions)
	r.Conditions = []ConditionTable{
		{Label: "gput=100", Pairwise: r.Pairwise},
		{Label: "gput=200", Pairwise: r.Pairwise},
	}
	return r
}

func TestTextRenderer_Conditions(t *testing.T) {
	out := render(t, "text", conditionsReport(t))

	assert.NotContains(t, out, "mean_diff")
	assert.Contains(t, out, "Wilcoxon signed rank test at gput=100:\n"+
		"    "+strings.Repeat(" ", upperWidth)+"refiner     mafft       \n"+
		"    mafft       0.125       \n"+
		"    muscle      0.125       degenerate  \n\n")
	assert.Contains(t, out, "Wilcoxon signed rank test at gput=200:\n")
}

func TestCSVRenderer_Conditions(t *testing.T) {
	out := render(t, "csv", conditionsReport(t))

	assert.Contains(t, out, "Wilcoxon signed rank test at gput=100:\n"+
		",refiner,mafft\n"+
		"mafft,0.125\n"+
		"muscle,0.125,degenerate\n"+
		"\n"+
		"Wilcoxon signed rank test at gput=200:\n")
}

func TestConditionLabel(t *testing.T) {
	c := significance.ConditionPairwise{
		KeyNames: []string{"AMA_predictive_value:gput", "mfl"},
		Keys:     []replicate.Value{replicate.IntValue(100), replicate.IntValue(2)},
	}
	assert.Equal(t, "gput=100, mfl=2", conditionLabel(c))
}
