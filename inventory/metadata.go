/*
metadata.go - Project metadata lookup

PURPOSE:
  Each ledger row carries descriptive project fields (proponents,
  methodology, business unit, ...) copied from the declared-projects
  portfolio. The portfolio is an external tabular source keyed by
  Registry ID; this file defines the lookup contract and a table-backed
  implementation validated once at startup.

SCHEMA CONTRACT:
  The portfolio table must carry "Registry ID" and every field listed in
  PortfolioFields. That is validated when the provider is constructed
  (fail fast with a SchemaError), not re-derived per lookup.
*/
package inventory

import (
	"errors"
	"fmt"

	"github.com/warp/accu-engine/forecast"
)

// ErrProjectNotFound is returned when a registry id has no portfolio row.
var ErrProjectNotFound = errors.New("project not found in portfolio")

// PortfolioFields are the descriptive portfolio columns copied onto every
// appended ledger row. "Project ID" is written to the ledger as
// "Project Number".
var PortfolioFields = []string{
	"Name", "Subitems", "Registry ID", "Project ID", "Methodology",
	"Project Stage", "Proponents", "Business Unit", "Operational Model",
	"Fee Model", "Entity", "Number", "Unit",
}

// portfolioRenames maps portfolio column names to their ledger column
// names where they differ.
var portfolioRenames = map[string]string{
	"project id": "Project Number",
}

// ProjectMetadata is the fixed descriptive field set for one project,
// keyed by destination ledger column name.
type ProjectMetadata map[string]string

// MetadataProvider looks up a project's descriptive fields by registry id.
type MetadataProvider interface {
	Lookup(registryID forecast.RegistryID) (ProjectMetadata, error)
}

// =============================================================================
// PORTFOLIO TABLE - Table-backed provider
// =============================================================================

// PortfolioTable serves metadata from a declared-projects portfolio table.
type PortfolioTable struct {
	table *Table
}

// NewPortfolioTable validates the portfolio schema once and wraps it.
func NewPortfolioTable(t *Table) (*PortfolioTable, error) {
	if !t.HasColumn(ColRegistryID) {
		return nil, &forecast.SchemaError{Table: "portfolio", Column: ColRegistryID}
	}
	for _, f := range PortfolioFields {
		if !t.HasColumn(f) {
			return nil, &forecast.SchemaError{Table: "portfolio", Column: f}
		}
	}
	return &PortfolioTable{table: t}, nil
}

func (p *PortfolioTable) Lookup(registryID forecast.RegistryID) (ProjectMetadata, error) {
	target := normalize(string(registryID))
	if target == "" {
		return nil, fmt.Errorf("%w: blank registry id", ErrProjectNotFound)
	}

	for row := 0; row < p.table.NumRows(); row++ {
		if normalize(p.table.Get(row, ColRegistryID)) != target {
			continue
		}
		meta := make(ProjectMetadata, len(PortfolioFields))
		for _, f := range PortfolioFields {
			dest := f
			if renamed, ok := portfolioRenames[normalize(f)]; ok {
				dest = renamed
			}
			meta[dest] = p.table.Get(row, f)
		}
		return meta, nil
	}

	return nil, fmt.Errorf("%w: registry id %q", ErrProjectNotFound, registryID)
}

// =============================================================================
// STATIC PROVIDER - For tests and fixed configurations
// =============================================================================

// StaticMetadata is a MetadataProvider backed by a plain map.
type StaticMetadata map[forecast.RegistryID]ProjectMetadata

func (s StaticMetadata) Lookup(registryID forecast.RegistryID) (ProjectMetadata, error) {
	meta, ok := s[registryID]
	if !ok {
		return nil, fmt.Errorf("%w: registry id %q", ErrProjectNotFound, registryID)
	}
	return meta, nil
}
