// Package harness runs YAML-defined conformance scenarios against the
// fulfillment decision procedure.
//
// A scenario seeds a fresh ledger, replays a sequence of customer
// requests, and asserts on each outcome and on the final derived state.
// Scenarios run against a real SQLite ledger in a temp directory with
// fixed request tokens, so runs are deterministic.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Seed contains ledger entries appended before any request runs.
	// These establish opening stock and cash.
	Seed []SeedEntry `yaml:"seed,omitempty"`

	// Requests is the main flow: customer requests processed in order,
	// each with optional expectations on its outcome.
	Requests []RequestStep `yaml:"requests"`

	// Final asserts on derived state after all requests.
	Final *FinalState `yaml:"final,omitempty"`
}

// SeedEntry is one opening ledger entry.
type SeedEntry struct {
	Item   string `yaml:"item,omitempty"`
	Kind   string `yaml:"kind"` // "restock" or "sale"
	Units  int    `yaml:"units,omitempty"`
	Amount string `yaml:"amount"`
	Date   string `yaml:"date"`
}

// RequestStep is one customer request with optional expectations.
type RequestStep struct {
	Job         string `yaml:"job,omitempty"`
	NeedSize    string `yaml:"need_size"`
	Event       string `yaml:"event,omitempty"`
	Item        string `yaml:"item,omitempty"`
	RequestDate string `yaml:"request_date"`

	// Expect validates the outcome. Nil means the step just has to
	// produce some outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is a subset match on an outcome: only set fields are
// checked.
type ExpectClause struct {
	Status         string `yaml:"status,omitempty"`
	FulfilledUnits *int   `yaml:"fulfilled_units,omitempty"`
	Charged        string `yaml:"charged,omitempty"`
	EntriesAppend  *int   `yaml:"entries_appended,omitempty"`
	LeadDays       *int   `yaml:"lead_days,omitempty"`
}

// FinalState asserts on ledger-derived state after the flow.
type FinalState struct {
	// AsOf is the snapshot date. Defaults to the last request's date.
	AsOf string `yaml:"as_of,omitempty"`

	// Stock maps item names to expected derived stock.
	Stock map[string]int `yaml:"stock,omitempty"`

	// Cash is the expected cash balance.
	Cash string `yaml:"cash,omitempty"`

	// EntryCount is the expected total number of ledger entries.
	EntryCount *int `yaml:"entry_count,omitempty"`
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by filename
// for deterministic execution order.
func LoadDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios in %s: %w", dir, err)
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	return scenarios, nil
}

// Validate checks scenario shape before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario must have a name")
	}
	if len(s.Requests) == 0 {
		return fmt.Errorf("scenario %q has no requests", s.Name)
	}
	for i, seed := range s.Seed {
		if seed.Kind != "restock" && seed.Kind != "sale" {
			return fmt.Errorf("scenario %q seed %d: kind must be restock or sale, got %q", s.Name, i, seed.Kind)
		}
		if seed.Date == "" {
			return fmt.Errorf("scenario %q seed %d: date is required", s.Name, i)
		}
	}
	for i, step := range s.Requests {
		if step.NeedSize == "" {
			return fmt.Errorf("scenario %q request %d: need_size is required", s.Name, i)
		}
	}
	return nil
}
