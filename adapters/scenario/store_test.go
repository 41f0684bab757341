package scenario

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gomonte/domain/core"
)

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing scenario fixture failed: %v", err)
	}
}

func TestLoad_WeightedScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "roulette.yaml", `name: roulette
description: four-outcome payout table
trials: 100000
seed: 42
workers: 4
outcomes:
  - label: straight
    probability: 0.05
    payoff: 1.0
    proposal: 0.159
  - label: split
    probability: 0.30
    payoff: 0.3
    proposal: 0.286
  - label: street
    probability: 0.15
    payoff: 0.5
    proposal: 0.238
  - label: even
    probability: 0.50
    payoff: 0.2
    proposal: 0.317
`)

	sc, err := NewStore(dir).Load(context.Background(), "roulette")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sc.Name != "roulette" {
		t.Errorf("Name = %s, want roulette", sc.Name)
	}
	if sc.Plan.Trials != 100000 || sc.Plan.Seed != 42 || sc.Plan.Workers != 4 {
		t.Errorf("plan = %+v, want 100000/42/4", sc.Plan)
	}
	if !sc.Table.Weighted() {
		t.Errorf("scenario with proposals loaded as plain")
	}
	if math.Abs(sc.Table.Expectation()-0.315) > 1e-12 {
		t.Errorf("Expectation = %v, want 0.315", sc.Table.Expectation())
	}
}

func TestLoad_PlainScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "coin.yml", `outcomes:
  - label: heads
    probability: 0.5
    payoff: 1.0
  - label: tails
    probability: 0.5
    payoff: 0.0
`)

	sc, err := NewStore(dir).Load(context.Background(), "coin")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sc.Name != "coin" {
		t.Errorf("Name should fall back to the file name, got %s", sc.Name)
	}
	if sc.Table.Weighted() {
		t.Errorf("scenario without proposals loaded as weighted")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load(context.Background(), "ghost")
	if err == nil {
		t.Fatalf("Load accepted a missing scenario")
	}
	if !errors.Is(err, core.ErrScenarioNotFound) {
		t.Errorf("error = %v, want ErrScenarioNotFound", err)
	}
}

func TestLoad_MixedProposals(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "mixed.yaml", `outcomes:
  - label: a
    probability: 0.5
    payoff: 1.0
    proposal: 0.5
  - label: b
    probability: 0.5
    payoff: 0.5
`)

	_, err := NewStore(dir).Load(context.Background(), "mixed")
	if err == nil {
		t.Fatalf("Load accepted a half-weighted scenario")
	}
	if !core.IsTableError(err) {
		t.Errorf("error not marked as table error: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "outcomes: [not, a, table")

	_, err := NewStore(dir).Load(context.Background(), "broken")
	if err == nil {
		t.Fatalf("Load accepted unparseable YAML")
	}
	if !core.IsTableError(err) {
		t.Errorf("error not marked as table error: %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "roulette.yaml", "outcomes: []\n")
	writeScenario(t, dir, "coin.yml", "outcomes: []\n")
	writeScenario(t, dir, "notes.txt", "not a scenario\n")

	names, err := NewStore(dir).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 || names[0] != "coin" || names[1] != "roulette" {
		t.Errorf("List = %v, want [coin roulette]", names)
	}
}
