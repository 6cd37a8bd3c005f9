package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"repsig/adapters/excel"
	"repsig/adapters/replicates"
	"repsig/domain/core"
	"repsig/internal"
	"repsig/internal/analysis/significance"
	"repsig/internal/config"
	"repsig/internal/errors"
	"repsig/internal/profile"
	"repsig/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), os.Stderr)

	rootCmd := newRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		// the path diagnostic has already been printed to stdout
		if !core.IsPathPatternError(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repsig",
		Short:         "Significance reports for replicate alignment benchmarks",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		newReportCmd(cfg, logger),
		newUnflattenCmd(logger),
		newProfilesCmd(cfg),
	)
	return rootCmd
}

type reportOptions struct {
	profile      string
	profilesFile string
	format       string
	replicates   int
	xlsx         string
	strict       bool
	noTitle      bool
}

func newReportCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	opts := reportOptions{
		profile:      cfg.Report.Profile,
		profilesFile: cfg.Report.ProfilesFile,
		format:       cfg.Report.Format,
		replicates:   cfg.Report.Replicates,
		strict:       cfg.Report.Strict,
	}

	cmd := &cobra.Command{
		Use:   "report [replicates.csv]",
		Short: "Run Kruskal-Wallis and pairwise Wilcoxon tests on a replicate file",
		Long: `Unflatten a replicate file, pivot the profile's metric columns into a
condition x method matrix, and report a Kruskal-Wallis H-test across all
methods followed by pairwise Wilcoxon signed-rank tests.

The report title is derived from the evaluation directory name, e.g.
  paper-data/DNATransTree-1-Tigger1-R3S-eval/replicates.csv
  paper-data/LINETree-2-L2-R3S-gput1500-mfl2-eval/replicates.csv

Example: repsig report --profile sps paper-data/DNATransTree-1-Tigger1-R3S-eval/replicates.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), args[0], opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.profile, "profile", opts.profile, "Report profile (see 'repsig profiles')")
	cmd.Flags().StringVar(&opts.profilesFile, "profiles-file", opts.profilesFile, "YAML file with additional profiles")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "Output format: text|csv (default: profile's format)")
	cmd.Flags().IntVar(&opts.replicates, "replicates", opts.replicates, "Replicate groups to analyze (0: profile value, else all groups found)")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "Also write the report to this .xlsx workbook")
	cmd.Flags().BoolVar(&opts.strict, "strict", opts.strict, "Fail if any pair of methods cannot be tested")
	cmd.Flags().BoolVar(&opts.noTitle, "no-title", false, "Do not derive the title from the input path")

	return cmd
}

func runReport(out io.Writer, path string, opts reportOptions, logger *internal.Logger) error {
	prof, err := loadProfile(opts.profile, opts.profilesFile)
	if err != nil {
		return err
	}

	var header []string
	if opts.noTitle {
		header = report.PlainLines(prof.Heading, path)
	} else {
		title, err := report.ParseTitle(path)
		if err != nil {
			fmt.Fprintf(out, "Could not find %s\n", path)
			return err
		}
		header = title.Lines(prof.Heading, path)
	}

	format := strings.ToLower(opts.format)
	if format == "" {
		format = prof.Format
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	src, err := replicates.NewReader(prof.Marker, logger).ReadFile(path)
	if err != nil {
		return err
	}

	n := replicateCount(opts.replicates, prof.Replicates, src.Table.Groups())
	logger.Info("[Report] %s: profile %s, %d of %d replicate groups, input %s",
		path, prof.Name, n, src.Table.Groups(), src.Hash.Short())

	analysis, err := significance.NewEngine(logger).Analyze(src.Table, prof.Options(n))
	if err != nil {
		return err
	}
	if opts.strict {
		if err := analysis.Err(); err != nil {
			return err
		}
	}

	manifest := report.NewManifest(path, src.Hash, prof.Name)
	manifest.Replicates = n
	rep := report.New(prof, header, analysis, manifest)

	text, err := report.RenderString(renderer, rep)
	if err != nil {
		return errors.Wrap(err, "failed to render report")
	}

	if opts.xlsx != "" {
		if err := excel.WriteReport(opts.xlsx, rep); err != nil {
			return errors.OutputFailed(opts.xlsx, err)
		}
		logger.Info("[Report] workbook written to %s (run %s)", opts.xlsx, manifest.RunID)
	}

	_, err = io.WriteString(out, text)
	return err
}

// replicateCount resolves the number of groups to analyze: an explicit
// flag wins, then the profile, then every group in the file.
func replicateCount(flag, fromProfile, found int) int {
	switch {
	case flag > 0:
		return flag
	case fromProfile > 0:
		return fromProfile
	default:
		return found
	}
}

func loadProfile(name, file string) (profile.Profile, error) {
	set, err := profile.Builtin()
	if err != nil {
		return profile.Profile{}, err
	}
	if file != "" {
		if err := set.LoadFile(file); err != nil {
			return profile.Profile{}, err
		}
	}
	return set.Lookup(name)
}

func newUnflattenCmd(logger *internal.Logger) *cobra.Command {
	var marker string

	cmd := &cobra.Command{
		Use:   "unflatten [replicates.csv]",
		Short: "Print a replicate file as one table with a replicate_group column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnflatten(cmd.OutOrStdout(), args[0], marker, logger)
		},
	}

	cmd.Flags().StringVar(&marker, "marker", replicates.DefaultMarker, "Prefix that opens each table header")
	return cmd
}

func runUnflatten(out io.Writer, path, marker string, logger *internal.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open replicate file: %w", err)
	}
	defer f.Close()

	lines, err := replicates.ReadLines(f)
	if err != nil {
		return err
	}
	flat, err := replicates.Unflatten(lines, marker)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("[Unflatten] %s: %d lines in, %d lines out", path, len(lines), len(flat))

	_, err = io.WriteString(out, strings.Join(flat, "\n")+"\n")
	return err
}

func newProfilesCmd(cfg *config.Config) *cobra.Command {
	profilesFile := cfg.Report.ProfilesFile

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available report profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := profile.Builtin()
			if err != nil {
				return err
			}
			if profilesFile != "" {
				if err := set.LoadFile(profilesFile); err != nil {
					return err
				}
			}
			for _, name := range set.Names() {
				p, _ := set.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-5s %-6s metric=%s heading=%q\n", p.Name, p.Mode, p.Format, p.Metric, p.Heading)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profilesFile, "profiles-file", profilesFile, "YAML file with additional profiles")
	return cmd
}
