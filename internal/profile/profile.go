package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"repsig/internal/analysis/significance"
	"repsig/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtinYAML []byte

// Layouts of the pairwise table
const (
	LayoutSquare     = "square"     // every off-diagonal cell, mean difference and p-value
	LayoutUpper      = "upper"      // p-values above the diagonal only
	LayoutConditions = "conditions" // one lower-triangle p-value table per condition
)

// Profile is one named report configuration
type Profile struct {
	Name          string   `yaml:"name"`
	Heading       string   `yaml:"heading"`
	Marker        string   `yaml:"marker"`
	Metric        string   `yaml:"metric"`
	Exclude       []string `yaml:"exclude"`
	ConditionKeys []string `yaml:"condition_keys"`
	Replicates    int      `yaml:"replicates"`
	Mode          string   `yaml:"mode"`
	LabelPrefix   string   `yaml:"label_prefix"`
	LabelSuffixes []string `yaml:"label_suffixes"`
	Format        string   `yaml:"format"`
	Layout        string   `yaml:"layout"`
}

type document struct {
	Profiles []Profile `yaml:"profiles"`
}

// Set holds profiles by name
type Set struct {
	profiles map[string]Profile
}

// Builtin returns the embedded profiles
func Builtin() (*Set, error) {
	set := &Set{profiles: make(map[string]Profile)}
	if err := set.merge(builtinYAML, "builtin profiles"); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFile adds the profiles of a YAML file, replacing built-ins of the same name
func (s *Set) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read profiles file %s", path)
	}
	return s.merge(data, path)
}

func (s *Set) merge(data []byte, source string) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("%s: %w", source, err))
	}
	for _, p := range doc.Profiles {
		p.applyDefaults()
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "%s", source)
		}
		s.profiles[p.Name] = p
	}
	return nil
}

// Lookup returns the named profile
func (s *Set) Lookup(name string) (Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, errors.NotFound(fmt.Sprintf("profile %q (known: %s)", name, strings.Join(s.Names(), ", ")))
	}
	return p, nil
}

// Names lists profile names alphabetically
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for n := range s.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p *Profile) applyDefaults() {
	if p.Marker == "" {
		p.Marker = "AMA"
	}
	if p.Mode == "" {
		p.Mode = string(significance.ModeRaw)
	}
	if p.Format == "" {
		p.Format = "text"
	}
	if p.Layout == "" {
		p.Layout = LayoutSquare
	}
	if p.Heading == "" {
		p.Heading = "Statistics"
	}
}

// Validate checks that the profile can drive an analysis
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return errors.ConfigInvalid("profile without a name")
	case p.Metric == "":
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: metric is required", p.Name))
	case p.Replicates < 0:
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: replicates must not be negative", p.Name))
	}

	switch significance.Mode(p.Mode) {
	case significance.ModeRaw:
	case significance.ModeAUC:
		if len(p.ConditionKeys) == 0 {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: auc mode needs a condition key", p.Name))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: unknown mode %q", p.Name, p.Mode))
	}

	if p.Format != "text" && p.Format != "csv" {
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: format must be text or csv", p.Name))
	}
	switch p.Layout {
	case LayoutSquare, LayoutUpper:
	case LayoutConditions:
		if len(p.ConditionKeys) == 0 {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: conditions layout needs a condition key", p.Name))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: layout must be %s, %s or %s", p.Name, LayoutSquare, LayoutUpper, LayoutConditions))
	}
	return nil
}

// MetricPredicate accepts columns containing the metric substring
func (p Profile) MetricPredicate() significance.Predicate {
	metric := p.Metric
	return func(name string) bool { return strings.Contains(name, metric) }
}

// ExcludePredicate accepts columns containing any exclude substring
func (p Profile) ExcludePredicate() significance.Predicate {
	exclude := append([]string(nil), p.Exclude...)
	return func(name string) bool {
		for _, e := range exclude {
			if strings.Contains(name, e) {
				return true
			}
		}
		return false
	}
}

// Options builds engine options for a table with the given replicate count
func (p Profile) Options(replicates int) significance.Options {
	return significance.Options{
		Metric:        p.MetricPredicate(),
		Exclude:       p.ExcludePredicate(),
		ConditionKeys: p.ConditionKeys,
		Replicates:    replicates,
		Mode:          significance.Mode(p.Mode),
		PerCondition:  p.Layout == LayoutConditions,
	}
}

// Label strips the category prefix and known suffixes for display
func (p Profile) Label(column string) string {
	label := strings.TrimPrefix(column, p.LabelPrefix)
	for _, suffix := range p.LabelSuffixes {
		label = strings.ReplaceAll(label, suffix, "")
	}
	return label
}
