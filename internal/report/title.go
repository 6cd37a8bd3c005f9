package report

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"repsig/domain/core"
)

// Evaluation directories look like
//
//	paper-data/DNATransTree-1-Tigger1-R3S-eval/replicates.csv
//	paper-data/DNATransTree-1-Tigger1-R3S-gput100-mfl2-eval/replicates.csv
var (
	divergencePattern    = regexp.MustCompile(`^.*/(DNATransTree|LINETree)-(\d+)-(\S+)-R3S-eval/.*`)
	fragmentationPattern = regexp.MustCompile(`^.*/(DNATransTree|LINETree)-(\d+)-(\S+)-R3S-gput(\d+)-mfl2-eval/.*`)
)

// Title carries the simulation parameters encoded in an input path
type Title struct {
	TreeType      string // DNATransTree or LINETree
	Index         int
	Subject       string
	Fragmentation string // gput value of a fragmentation run, empty for divergence runs
}

// ParseTitle derives report title fields from the input path
func ParseTitle(path string) (Title, error) {
	slashed := filepath.ToSlash(path)

	m := divergencePattern.FindStringSubmatch(slashed)
	if m == nil {
		m = fragmentationPattern.FindStringSubmatch(slashed)
	}
	if m == nil {
		return Title{}, core.NewPathPatternError(path)
	}

	index, err := strconv.Atoi(m[2])
	if err != nil {
		return Title{}, core.NewPathPatternError(path)
	}

	t := Title{TreeType: m[1], Index: index, Subject: m[3]}
	if len(m) > 4 {
		t.Fragmentation = m[4]
	}
	return t, nil
}

// IsFragmentation reports whether the path named a fragmentation run
func (t Title) IsFragmentation() bool {
	return t.Fragmentation != ""
}

// Lines renders the title block under the given heading
func (t Title) Lines(heading, path string) []string {
	analysis := "Sequence Divergence Analysis"
	if t.IsFragmentation() {
		analysis = "Sequence Fragmentation Analysis"
	}

	tree := "DNA Transposon Tree"
	if t.TreeType == "LINETree" {
		tree = "LINE Tree"
	}

	lines := []string{
		"",
		fmt.Sprintf("%s for %s %s", heading, t.Subject, analysis),
		"",
		fmt.Sprintf("Tree Simulation: %s #%d", tree, t.Index),
	}
	if t.IsFragmentation() {
		lines = append(lines, fragmentationLine(t.Fragmentation))
	}
	return append(lines, "Data File: "+path, "")
}

// PlainLines is the title block used when the path is not parsed
func PlainLines(heading, path string) []string {
	return []string{"", fmt.Sprintf("%s for %s", heading, path), ""}
}

func fragmentationLine(gput string) string {
	level := ""
	switch gput {
	case "100":
		level = "Low"
	case "1500":
		level = "Medium"
	case "3000":
		level = "High"
	}
	if level == "" {
		return fmt.Sprintf("Fragmentation Simulation [gput%s]", gput)
	}
	return fmt.Sprintf("Fragmentation Simulation, %s Divergence Sequences [gput%s]", level, gput)
}
