package run

import (
	"fmt"

	"gomonte/domain/core"
)

// Manifest is the truth source for replaying a run: every input that
// determines the output stream is captured here before trials start.
type Manifest struct {
	RunID       core.RunID            `json:"run_id"`
	TableHash   core.DistributionHash `json:"table_hash"`
	Weighted    bool                  `json:"weighted"`
	Seed        int64                 `json:"seed"`
	Trials      int64                 `json:"trials"`
	Workers     int                   `json:"workers"`
	CodeVersion string                `json:"code_version"`
	Fingerprint Fingerprint           `json:"fingerprint"`
	CreatedAt   core.Timestamp        `json:"created_at"`
}

// Fingerprint binds the determinism parameters into one hash. Two runs
// with equal fingerprints produce bit-identical estimates.
type Fingerprint struct {
	TableHash   core.DistributionHash `json:"table_hash"`
	Seed        int64                 `json:"seed"`
	Trials      int64                 `json:"trials"`
	Workers     int                   `json:"workers"`
	CodeVersion string                `json:"code_version"`
	Fingerprint core.Fingerprint      `json:"fingerprint"`
}

// NewFingerprint hashes the determinism tuple.
func NewFingerprint(tableHash core.DistributionHash, seed, trials int64, workers int, codeVersion string) Fingerprint {
	data := fmt.Sprintf("table:%s|seed:%d|trials:%d|workers:%d|code:%s",
		tableHash, seed, trials, workers, codeVersion)

	return Fingerprint{
		TableHash:   tableHash,
		Seed:        seed,
		Trials:      trials,
		Workers:     workers,
		CodeVersion: codeVersion,
		Fingerprint: core.NewFingerprint([]byte(data)),
	}
}

// NewManifest creates a run manifest from the run request.
func NewManifest(tableHash core.DistributionHash, weighted bool, seed, trials int64, workers int, codeVersion string) *Manifest {
	return &Manifest{
		RunID:       core.NewRunID(),
		TableHash:   tableHash,
		Weighted:    weighted,
		Seed:        seed,
		Trials:      trials,
		Workers:     workers,
		CodeVersion: codeVersion,
		Fingerprint: NewFingerprint(tableHash, seed, trials, workers, codeVersion),
		CreatedAt:   core.Now(),
	}
}

// Validate checks that the manifest is complete enough to replay from.
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if core.Hash(m.TableHash).IsEmpty() {
		return core.NewValidationError("run_manifest", "table_hash cannot be empty")
	}
	if m.Trials <= 0 {
		return core.NewValidationError("run_manifest", "trials must be positive")
	}
	if m.Workers <= 0 {
		return core.NewValidationError("run_manifest", "workers must be positive")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("run_manifest", "code_version cannot be empty")
	}
	return nil
}
