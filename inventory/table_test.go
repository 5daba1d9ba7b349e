package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/accu-engine/forecast"
	"github.com/warp/accu-engine/inventory"
)

// =============================================================================
// TABLE TESTS
// =============================================================================

func TestTable_HeaderMatchingNormalized(t *testing.T) {
	table := inventory.NewTable([]string{"  Registry ID ", "Total Amount (ACCUs)"})

	assert.True(t, table.HasColumn("registry id"))
	assert.True(t, table.HasColumn("Registry ID"))
	assert.False(t, table.HasColumn("Status"))

	// Original header text is preserved verbatim.
	assert.Equal(t, []string{"  Registry ID ", "Total Amount (ACCUs)"}, table.Headers())
}

func TestTable_EnsureColumns_AppendsAtEndOnly(t *testing.T) {
	// GIVEN: A table with an unknown custom column and one data row
	// WHEN: Ensuring the mandatory columns
	// THEN: Existing columns keep their positions, missing ones land at the
	//       end, and existing rows are padded

	table := inventory.NewTable([]string{"Registry ID", "Internal Notes"})
	table.AppendRow(map[string]string{
		"Registry ID":    "ERF-100001",
		"Internal Notes": "migrated 2024",
	})

	table.EnsureColumns(inventory.ColRegistryID, inventory.ColPeriodEnd, inventory.ColAmount)

	headers := table.Headers()
	require.Equal(t, []string{"Registry ID", "Internal Notes",
		inventory.ColPeriodEnd, inventory.ColAmount}, headers)

	assert.Equal(t, "migrated 2024", table.Get(0, "Internal Notes"))
	assert.Equal(t, "", table.Get(0, inventory.ColPeriodEnd))
}

func TestTable_GetTrimsAndToleratesMissing(t *testing.T) {
	table := inventory.NewTable([]string{"Registry ID"})
	table.AppendRow(map[string]string{"Registry ID": "  ERF-100001  "})

	assert.Equal(t, "ERF-100001", table.Get(0, "Registry ID"))
	assert.Equal(t, "", table.Get(0, "No Such Column"))
	assert.Equal(t, "", table.Get(99, "Registry ID"))
}

func TestTable_AppendCells_PreservesDuplicateHeaderColumns(t *testing.T) {
	// GIVEN: An export-shaped table with two columns named "Notes"
	// WHEN: Appending rows positionally
	// THEN: Both cells keep their own columns; only the first occurrence is
	//       addressable by name, per the name index contract

	table := inventory.NewTable([]string{"Name", "Notes", "Notes"})
	table.AppendCells([]string{"Willow Creek", "first-notes", "second-notes"})

	rows := table.CellRows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Willow Creek", "first-notes", "second-notes"}, rows[0])
	assert.Equal(t, "first-notes", table.Get(0, "Notes"))
}

func TestTable_AppendCells_PadsAndTruncates(t *testing.T) {
	table := inventory.NewTable([]string{"Name", "Registry ID"})

	table.AppendCells([]string{"short"})
	table.AppendCells([]string{"a", "b", "overflow"})

	rows := table.CellRows()
	assert.Equal(t, []string{"short", ""}, rows[0])
	assert.Equal(t, []string{"a", "b"}, rows[1])
}

func TestTable_AppendRow_DropsUnknownColumns(t *testing.T) {
	table := inventory.NewTable([]string{"Registry ID"})
	table.AppendRow(map[string]string{
		"Registry ID": "ERF-100001",
		"Phantom":     "should vanish",
	})

	m := table.RowMap(0)
	require.NotNil(t, m)
	assert.Equal(t, "ERF-100001", m["Registry ID"])
	_, ok := m["Phantom"]
	assert.False(t, ok)
}

// =============================================================================
// PORTFOLIO METADATA TESTS
// =============================================================================

func portfolioHeaders() []string {
	headers := make([]string, 0, len(inventory.PortfolioFields))
	return append(headers, inventory.PortfolioFields...)
}

func TestPortfolioTable_SchemaValidatedOnce(t *testing.T) {
	complete := inventory.NewTable(portfolioHeaders())
	_, err := inventory.NewPortfolioTable(complete)
	assert.NoError(t, err)

	incomplete := inventory.NewTable([]string{"Registry ID", "Name"})
	_, err = inventory.NewPortfolioTable(incomplete)
	assert.ErrorIs(t, err, forecast.ErrSchema)
}

func TestPortfolioTable_Lookup_RenamesProjectID(t *testing.T) {
	table := inventory.NewTable(portfolioHeaders())
	table.AppendRow(map[string]string{
		"Registry ID": "ERF-100001",
		"Name":        "Willow Creek Regeneration",
		"Project ID":  "P-0042",
		"Methodology": "HIR",
	})

	provider, err := inventory.NewPortfolioTable(table)
	require.NoError(t, err)

	meta, err := provider.Lookup("ERF-100001")
	require.NoError(t, err)

	assert.Equal(t, "P-0042", meta["Project Number"], "Project ID maps to the ledger's Project Number")
	_, hasOriginal := meta["Project ID"]
	assert.False(t, hasOriginal)
	assert.Equal(t, "HIR", meta["Methodology"])
}

func TestPortfolioTable_Lookup_Unknown(t *testing.T) {
	table := inventory.NewTable(portfolioHeaders())
	provider, err := inventory.NewPortfolioTable(table)
	require.NoError(t, err)

	_, err = provider.Lookup("ERF-999999")
	assert.ErrorIs(t, err, inventory.ErrProjectNotFound)

	_, err = provider.Lookup("")
	assert.ErrorIs(t, err, inventory.ErrProjectNotFound)
}
