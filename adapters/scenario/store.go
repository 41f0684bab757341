package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"gomonte/domain/core"
	"gomonte/domain/dist"
	"gomonte/ports"
)

// scenarioFile is the YAML schema for a named payout table. The proposal
// field is all-or-nothing: set it on every outcome for a weighted run, or
// on none for plain Monte Carlo.
type scenarioFile struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Trials      int64         `yaml:"trials,omitempty"`
	Seed        int64         `yaml:"seed,omitempty"`
	Workers     int           `yaml:"workers,omitempty"`
	Outcomes    []outcomeSpec `yaml:"outcomes"`
}

type outcomeSpec struct {
	Label       string   `yaml:"label"`
	Probability float64  `yaml:"probability"`
	Payoff      float64  `yaml:"payoff"`
	Proposal    *float64 `yaml:"proposal,omitempty"`
}

// Store implements ports.ScenarioStorePort over a directory of YAML files,
// one scenario per file, file name matching the scenario name.
type Store struct {
	dir string
}

// NewStore creates a scenario store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads and validates the named scenario.
func (s *Store) Load(ctx context.Context, name string) (*ports.Scenario, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewTableError(path, err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.NewTableError(path, fmt.Errorf("parsing scenario: %w", err))
	}

	table, err := buildTable(path, file.Outcomes)
	if err != nil {
		return nil, err
	}

	if file.Name == "" {
		file.Name = name
	}
	return &ports.Scenario{
		Name:        file.Name,
		Description: file.Description,
		Table:       table,
		Plan: ports.TrialPlan{
			Trials:  file.Trials,
			Seed:    file.Seed,
			Workers: file.Workers,
		},
	}, nil
}

// List names every scenario file in the directory, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// resolve maps a scenario name to its file, trying .yaml then .yml.
func (s *Store) resolve(name string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(s.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", core.ErrScenarioNotFound, name, s.dir)
}

// buildTable turns outcome specs into a validated distribution.
func buildTable(path string, specs []outcomeSpec) (*dist.Distribution, error) {
	withProposal := 0
	for _, spec := range specs {
		if spec.Proposal != nil {
			withProposal++
		}
	}
	if withProposal != 0 && withProposal != len(specs) {
		return nil, core.NewTableError(path, fmt.Errorf("proposal must be set on every outcome or on none"))
	}

	outcomes := make([]dist.Outcome, len(specs))
	for i, spec := range specs {
		outcomes[i] = dist.Outcome{
			Label:       spec.Label,
			Probability: spec.Probability,
			Payoff:      spec.Payoff,
		}
		if spec.Proposal != nil {
			outcomes[i].Proposal = *spec.Proposal
		}
	}

	if withProposal == 0 {
		return dist.Unweighted(outcomes)
	}
	return dist.New(outcomes)
}
