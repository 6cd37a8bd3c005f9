package profile

import (
	"os"
	"path/filepath"
	"testing"

	"repsig/internal/analysis/significance"
	apperrors "repsig/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	set, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"consensus", "consensus-gput", "sps", "sps-gput"}, set.Names())

	cons, err := set.Lookup("consensus")
	require.NoError(t, err)
	assert.Equal(t, "csv", cons.Format)
	assert.Equal(t, LayoutSquare, cons.Layout)
	assert.Equal(t, []string{"vs_refmsacons:gput"}, cons.ConditionKeys)

	sps, err := set.Lookup("sps")
	require.NoError(t, err)
	assert.Equal(t, string(significance.ModeAUC), sps.Mode)
	assert.Equal(t, LayoutUpper, sps.Layout)
	assert.False(t, sps.Options(3).PerCondition)

	for _, name := range []string{"consensus-gput", "sps-gput"} {
		p, err := set.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, LayoutConditions, p.Layout)
		assert.Equal(t, []string{"AMA_predictive_value:gput"}, p.ConditionKeys)
		assert.True(t, p.Options(3).PerCondition)
	}
}

func TestPredicatesAndLabel(t *testing.T) {
	set, err := Builtin()
	require.NoError(t, err)
	sps, err := set.Lookup("sps")
	require.NoError(t, err)

	metric, exclude := sps.MetricPredicate(), sps.ExcludePredicate()
	assert.True(t, metric("QScore_Q:mafft-padded"))
	assert.False(t, metric("vs_refmsacons:mafft"))
	assert.True(t, exclude("QScore_Q:gput"))
	assert.False(t, exclude("QScore_Q:mafft"))

	assert.Equal(t, "mafft", sps.Label("QScore_Q:mafft-padded"))
	assert.Equal(t, "refiner", sps.Label("QScore_Q:refiner"))

	opts := sps.Options(10)
	assert.Equal(t, 10, opts.Replicates)
	assert.Equal(t, significance.ModeAUC, opts.Mode)
}

func TestLookupUnknown(t *testing.T) {
	set, err := Builtin()
	require.NoError(t, err)

	_, err = set.Lookup("tcs")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - name: tc
    metric: QScore_TC
    exclude: [gput, time]
    condition_keys: ["QScore_TC:gput"]
  - name: sps
    metric: QScore_Q
    format: csv
`), 0o644))

	set, err := Builtin()
	require.NoError(t, err)
	require.NoError(t, set.LoadFile(path))

	tc, err := set.Lookup("tc")
	require.NoError(t, err)
	assert.Equal(t, "AMA", tc.Marker)
	assert.Equal(t, "text", tc.Format)
	assert.Equal(t, string(significance.ModeRaw), tc.Mode)
	assert.True(t, tc.ExcludePredicate()("QScore_TC:time"))

	sps, err := set.Lookup("sps")
	require.NoError(t, err)
	assert.Equal(t, "csv", sps.Format)
	assert.Equal(t, string(significance.ModeRaw), sps.Mode)
}

func TestLoadFileInvalid(t *testing.T) {
	testCases := map[string]string{
		"no metric":          "profiles:\n  - name: x\n",
		"bad mode":           "profiles:\n  - name: x\n    metric: m\n    mode: median\n",
		"auc, no key":        "profiles:\n  - name: x\n    metric: m\n    mode: auc\n",
		"bad format":         "profiles:\n  - name: x\n    metric: m\n    format: html\n",
		"bad layout":         "profiles:\n  - name: x\n    metric: m\n    layout: lower\n",
		"conditions, no key": "profiles:\n  - name: x\n    metric: m\n    layout: conditions\n",
		"not yaml":           "profiles: [",
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			set, err := Builtin()
			require.NoError(t, err)
			err = set.LoadFile(path)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}
