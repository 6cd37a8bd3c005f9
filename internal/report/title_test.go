package report

import (
	"testing"

	"repsig/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Title
	}{
		{
			name: "divergence run",
			path: "paper-data/DNATransTree-3-Tigger1-R3S-eval/replicates.csv",
			want: Title{TreeType: "DNATransTree", Index: 3, Subject: "Tigger1"},
		},
		{
			name: "line tree",
			path: "/data/LINETree-12-L2-R3S-eval/replicates.csv",
			want: Title{TreeType: "LINETree", Index: 12, Subject: "L2"},
		},
		{
			name: "fragmentation run",
			path: "paper-data/LINETree-2-L1-R3S-gput1500-mfl2-eval/replicates.csv",
			want: Title{TreeType: "LINETree", Index: 2, Subject: "L1", Fragmentation: "1500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTitle(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTitle_NoMatch(t *testing.T) {
	for _, path := range []string{
		"replicates.csv",
		"paper-data/replicates.csv",
		"paper-data/OtherTree-1-X-R3S-eval/replicates.csv",
		"paper-data/DNATransTree-x-Tigger1-R3S-eval/replicates.csv",
	} {
		_, err := ParseTitle(path)
		require.Error(t, err, path)
		assert.True(t, core.IsPathPatternError(err), path)
		assert.Contains(t, err.Error(), path)
	}
}

func TestTitleLines(t *testing.T) {
	path := "paper-data/DNATransTree-3-Tigger1-R3S-eval/replicates.csv"
	title, err := ParseTitle(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"",
		"Derived Consensus Statistics for Tigger1 Sequence Divergence Analysis",
		"",
		"Tree Simulation: DNA Transposon Tree #3",
		"Data File: " + path,
		"",
	}, title.Lines("Derived Consensus Statistics", path))
}

func TestTitleLines_Fragmentation(t *testing.T) {
	tests := []struct {
		gput string
		want string
	}{
		{"100", "Fragmentation Simulation, Low Divergence Sequences [gput100]"},
		{"1500", "Fragmentation Simulation, Medium Divergence Sequences [gput1500]"},
		{"3000", "Fragmentation Simulation, High Divergence Sequences [gput3000]"},
		{"700", "Fragmentation Simulation [gput700]"},
	}

	for _, tt := range tests {
		path := "x/LINETree-1-L2-R3S-gput" + tt.gput + "-mfl2-eval/replicates.csv"
		title, err := ParseTitle(path)
		require.NoError(t, err)

		lines := title.Lines("SPS Statistics", path)
		assert.Equal(t, "SPS Statistics for L2 Sequence Fragmentation Analysis", lines[1])
		assert.Equal(t, "Tree Simulation: LINE Tree #1", lines[3])
		assert.Equal(t, tt.want, lines[4])
	}
}

func TestPlainLines(t *testing.T) {
	assert.Equal(t, []string{"", "SPS Statistics for data.csv", ""}, PlainLines("SPS Statistics", "data.csv"))
}
