package report

import (
	"time"

	"repsig/domain/core"
)

// Manifest records what one report run consumed
type Manifest struct {
	RunID      core.RunID
	Input      string
	InputHash  core.Hash
	Profile    string
	Mode       string
	Replicates int
	Methods    int
	Rows       int
	CreatedAt  time.Time
}

// NewManifest stamps a run with a fresh ID and the current time
func NewManifest(input string, hash core.Hash, profile string) Manifest {
	return Manifest{
		RunID:     core.NewRunID(),
		Input:     input,
		InputHash: hash,
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}
}

// Fields returns the manifest as ordered key/value pairs
func (m Manifest) Fields() [][2]string {
	return [][2]string{
		{"run_id", m.RunID.String()},
		{"input", m.Input},
		{"input_sha256", m.InputHash.String()},
		{"profile", m.Profile},
		{"mode", m.Mode},
		{"replicates", itoa(m.Replicates)},
		{"methods", itoa(m.Methods)},
		{"matrix_rows", itoa(m.Rows)},
		{"created_at", m.CreatedAt.Format(time.RFC3339)},
	}
}
