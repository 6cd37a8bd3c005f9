package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"repsig/internal/profile"
)

const (
	squareWidth = 17
	upperWidth  = 12

	degenerateCell = "degenerate"
)

// Renderer writes a report in one output format
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// NewRenderer returns the renderer for "text" or "csv"
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text":
		return TextRenderer{}, nil
	case "csv":
		return CSVRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// RenderString renders into memory; nothing reaches w unless rendering succeeds
func RenderString(rd Renderer, r *Report) (string, error) {
	var buf bytes.Buffer
	if err := rd.Render(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TextRenderer prints aligned, human-readable tables
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, r *Report) error {
	var b strings.Builder
	for _, line := range r.Header {
		b.WriteString(line + "\n")
	}

	b.WriteString("Kruskal-Wallis H-test\n")
	fmt.Fprintf(&b, "    H=%s, p=%s\n\n", formatFloat(r.Omnibus.H), formatFloat(r.Omnibus.PValue))

	switch r.Layout {
	case profile.LayoutUpper:
		writeTextUpper(&b, r)
	case profile.LayoutConditions:
		for _, c := range r.Conditions {
			writeTextLower(&b, r.Labels, c)
		}
	default:
		writeTextSquare(&b, r)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextSquare(b *strings.Builder, r *Report) {
	width := columnWidth(r.Labels, squareWidth)
	pad := strings.Repeat(" ", width)

	b.WriteString("Wilcoxon signed rank test: mean_diff [p-val]\n")
	b.WriteString("    " + pad)
	for _, l := range r.Labels {
		fmt.Fprintf(b, "%-*s", width, l)
	}
	b.WriteString("\n")

	for a, la := range r.Labels {
		fmt.Fprintf(b, "    %-*s", width, la)
		for c := range r.Labels {
			cell := r.Pairwise.Cell(a, c)
			switch {
			case cell == nil:
				b.WriteString(pad)
			case cell.Err != nil:
				fmt.Fprintf(b, "%-*s", width, degenerateCell)
			default:
				fmt.Fprintf(b, "%-*s", width, fmt.Sprintf("%6.2f [%5.1e] ", cell.MeanDiff, cell.PValue))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeTextUpper(b *strings.Builder, r *Report) {
	n := len(r.Labels)
	if n < 2 {
		return
	}
	width := columnWidth(r.Labels, upperWidth)
	pad := strings.Repeat(" ", width)

	b.WriteString("Wilcoxon signed rank test:\n")
	b.WriteString("    " + pad)
	for _, l := range r.Labels[1:] {
		fmt.Fprintf(b, "%-*s", width, l)
	}
	b.WriteString("\n")

	for a := 0; a < n-1; a++ {
		fmt.Fprintf(b, "    %-*s", width, r.Labels[a])
		for c := 1; c < n; c++ {
			cell := r.Pairwise.Cell(a, c)
			switch {
			case c <= a:
				b.WriteString(pad)
			case cell.Err != nil:
				fmt.Fprintf(b, "%-*s", width, degenerateCell)
			default:
				fmt.Fprintf(b, "%-*.3f", width, cell.PValue)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// writeTextLower prints p-values below the diagonal for one condition
func writeTextLower(b *strings.Builder, labels []string, c ConditionTable) {
	n := len(labels)
	if n < 2 {
		return
	}
	width := columnWidth(labels, upperWidth)
	pad := strings.Repeat(" ", width)

	fmt.Fprintf(b, "Wilcoxon signed rank test at %s:\n", c.Label)
	b.WriteString("    " + pad)
	for _, l := range labels[:n-1] {
		fmt.Fprintf(b, "%-*s", width, l)
	}
	b.WriteString("\n")

	for a := 1; a < n; a++ {
		fmt.Fprintf(b, "    %-*s", width, labels[a])
		for col := 0; col < a; col++ {
			cell := c.Pairwise.Cell(a, col)
			if cell.Err != nil {
				fmt.Fprintf(b, "%-*s", width, degenerateCell)
				continue
			}
			fmt.Fprintf(b, "%-*.3f", width, cell.PValue)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// columnWidth widens min so that every label keeps a trailing space
func columnWidth(labels []string, min int) int {
	width := min
	for _, l := range labels {
		if len(l)+1 > width {
			width = len(l) + 1
		}
	}
	return width
}

// CSVRenderer prints comma-delimited tables
type CSVRenderer struct{}

func (CSVRenderer) Render(w io.Writer, r *Report) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	blank := func() {
		cw.Flush()
		buf.WriteString("\n")
	}

	// title lines are free text and go out unquoted
	for _, h := range r.Header {
		buf.WriteString(h + "\n")
	}

	cw.Write([]string{"Kruskal-Wallis H-test"})
	cw.Write([]string{"", "H =", formatFloat(r.Omnibus.H), "p =", formatFloat(r.Omnibus.PValue)})
	blank()

	switch r.Layout {
	case profile.LayoutUpper:
		writeCSVUpper(cw, r)
	case profile.LayoutConditions:
		for i, c := range r.Conditions {
			if i > 0 {
				blank()
			}
			writeCSVLower(cw, r.Labels, c)
		}
	default:
		writeCSVSquare(cw, r)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeCSVSquare(cw *csv.Writer, r *Report) {
	cw.Write([]string{"Wilcoxon signed rank test: mean_diff [p-val]"})
	cw.Write(append([]string{""}, r.Labels...))

	for a, la := range r.Labels {
		record := []string{la}
		for c := range r.Labels {
			cell := r.Pairwise.Cell(a, c)
			switch {
			case cell == nil:
				record = append(record, "")
			case cell.Err != nil:
				record = append(record, degenerateCell)
			default:
				record = append(record, fmt.Sprintf("%.2f [%.1e]", cell.MeanDiff, cell.PValue))
			}
		}
		cw.Write(record)
	}
}

func writeCSVUpper(cw *csv.Writer, r *Report) {
	n := len(r.Labels)
	if n < 2 {
		return
	}
	cw.Write([]string{"Wilcoxon signed rank test:"})
	cw.Write(append([]string{""}, r.Labels[1:]...))

	for a := 0; a < n-1; a++ {
		record := []string{r.Labels[a]}
		for c := 1; c < n; c++ {
			cell := r.Pairwise.Cell(a, c)
			switch {
			case c <= a:
				record = append(record, "")
			case cell.Err != nil:
				record = append(record, degenerateCell)
			default:
				record = append(record, fmt.Sprintf("%.3f", cell.PValue))
			}
		}
		cw.Write(record)
	}
}

func writeCSVLower(cw *csv.Writer, labels []string, c ConditionTable) {
	n := len(labels)
	if n < 2 {
		return
	}
	cw.Write([]string{"Wilcoxon signed rank test at " + c.Label + ":"})
	cw.Write(append([]string{""}, labels[:n-1]...))

	for a := 1; a < n; a++ {
		record := []string{labels[a]}
		for col := 0; col < a; col++ {
			cell := c.Pairwise.Cell(a, col)
			if cell.Err != nil {
				record = append(record, degenerateCell)
				continue
			}
			record = append(record, fmt.Sprintf("%.3f", cell.PValue))
		}
		cw.Write(record)
	}
}
