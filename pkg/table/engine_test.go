package table

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name      string
	Email     string
	Zip       string
	StateID   string
	Active    bool
	CreatedAt int64
}

func testEngine() *Engine[row] {
	return &Engine[row]{
		Columns: []Column[row]{
			{Key: "name", Title: "Name", Resolve: func(r row) string { return r.Name }, Sortable: true, Searchable: true},
			{Key: "email", Title: "Email", Resolve: func(r row) string { return r.Email }, Sortable: true, Searchable: true},
			{Key: "zip", Title: "Zip", Resolve: func(r row) string { return r.Zip }},
			{Key: "created_at", Title: "Created", Type: TypeNumeric, Numeric: func(r row) float64 { return float64(r.CreatedAt) },
				Resolve: func(r row) string { return strconv.FormatInt(r.CreatedAt, 10) }, Sortable: true},
		},
		Filters: map[string]Predicate[row]{
			"zip":    ContainsFold(func(r row) string { return r.Zip }),
			"state":  Equals(func(r row) string { return r.StateID }),
			"status": ActiveFlag(func(r row) bool { return r.Active }),
		},
	}
}

func sampleRows() []row {
	return []row{
		{Name: "Alice", Email: "alice@example.com", Zip: "90001", StateID: "ca", Active: true, CreatedAt: 100},
		{Name: "Bob", Email: "bob@example.com", Zip: "10001", StateID: "ny", Active: false, CreatedAt: 200},
	}
}

func TestFilterStatusAndSearch(t *testing.T) {
	e := testEngine()
	records := sampleRows()

	active := e.Filter(records, "", FilterSpec{"status": "active"})
	require.Len(t, active, 1)
	assert.Equal(t, "Alice", active[0].Name)

	bob := e.Filter(records, "bob", nil)
	require.Len(t, bob, 1)
	assert.Equal(t, "Bob", bob[0].Name)
}

func TestFilterConjunction(t *testing.T) {
	e := testEngine()
	records := []row{
		{Name: "Alice", Zip: "90001", StateID: "ca", Active: true},
		{Name: "Alan", Zip: "90002", StateID: "ca", Active: false},
		{Name: "Bob", Zip: "90001", StateID: "ny", Active: true},
	}

	got := e.Filter(records, "al", FilterSpec{"state": "ca", "status": "active"})
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)

	// Result is always a subset of the input, exactly the matching one.
	for _, r := range got {
		assert.Contains(t, records, r)
	}
}

func TestFilterEmptyTermAndEmptyValues(t *testing.T) {
	e := testEngine()
	records := sampleRows()

	assert.Len(t, e.Filter(records, "   ", FilterSpec{"zip": "", "state": ""}), 2)
	assert.Len(t, e.Filter(records, "", nil), 2)
}

func TestFilterUnknownKeyIgnored(t *testing.T) {
	e := testEngine()
	assert.Len(t, e.Filter(sampleRows(), "", FilterSpec{"bogus": "x"}), 2)
}

func TestSortToggleReversal(t *testing.T) {
	e := testEngine()
	records := []row{
		{Name: "Carol"}, {Name: "Alice"}, {Name: "Bob"},
	}

	asc := e.Sort(records, SortSpec{Column: "name", Direction: Asc})
	desc := e.Sort(records, SortSpec{Column: "name", Direction: Desc})

	require.Len(t, asc, 3)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(asc))
	// With no ties, descending is the exact reversal.
	assert.Equal(t, []string{"Carol", "Bob", "Alice"}, names(desc))
}

func TestSortNameDescScenario(t *testing.T) {
	e := testEngine()
	got := e.Sort(sampleRows(), SortSpec{Column: "name", Direction: Desc})
	assert.Equal(t, []string{"Bob", "Alice"}, names(got))
}

func TestSortNumericColumn(t *testing.T) {
	e := testEngine()
	records := []row{
		{Name: "b", CreatedAt: 300},
		{Name: "a", CreatedAt: 100},
		{Name: "c", CreatedAt: 200},
	}
	got := e.Sort(records, SortSpec{Column: "created_at", Direction: Asc})
	assert.Equal(t, []string{"a", "c", "b"}, names(got))
}

func TestSortMissingColumnPreservesOrder(t *testing.T) {
	e := testEngine()
	records := sampleRows()
	assert.Equal(t, names(records), names(e.Sort(records, SortSpec{})))
	assert.Equal(t, names(records), names(e.Sort(records, SortSpec{Column: "nope"})))
}

func TestSortMissingValuesFirstAscending(t *testing.T) {
	e := testEngine()
	records := []row{{Email: "z@example.com", Name: "z"}, {Name: "empty"}}
	got := e.Sort(records, SortSpec{Column: "email", Direction: Asc})
	assert.Equal(t, "empty", got[0].Name)
}

func TestPaginateBounds(t *testing.T) {
	records := make([]row, 7)
	for i := range records {
		records[i].Name = strconv.Itoa(i)
	}

	// Concatenating all pages reconstructs the set exactly once each.
	var all []row
	pages := TotalPages(len(records), 3)
	assert.Equal(t, 3, pages)
	for p := 1; p <= pages; p++ {
		page := Paginate(records, PageSpec{Page: p, PageSize: 3})
		assert.LessOrEqual(t, len(page), 3)
		all = append(all, page...)
	}
	assert.Equal(t, names(records), names(all))

	assert.Empty(t, Paginate(records, PageSpec{Page: 4, PageSize: 3}))
	assert.Empty(t, Paginate(records, PageSpec{Page: 0, PageSize: 3}))
	assert.Empty(t, Paginate(records, PageSpec{Page: 1, PageSize: 0}))
}

func TestPaginateSecondRecordScenario(t *testing.T) {
	records := sampleRows()
	got := Paginate(records, PageSpec{Page: 2, PageSize: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].Name)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 10, 25))
	assert.Equal(t, 3, ClampPage(9, 10, 25))
	assert.Equal(t, 2, ClampPage(2, 10, 25))
	// Minimum of 1 even when the filtered set is empty.
	assert.Equal(t, 1, ClampPage(5, 10, 0))
}

func TestApplyPipeline(t *testing.T) {
	e := testEngine()
	records := []row{
		{Name: "Dora", StateID: "ca", Active: true},
		{Name: "Alice", StateID: "ca", Active: true},
		{Name: "Carol", StateID: "ny", Active: true},
		{Name: "Bob", StateID: "ca", Active: true},
		{Name: "Eve", StateID: "ca", Active: false},
	}

	view := e.Apply(records, Query{
		Filters: FilterSpec{"state": "ca", "status": "active"},
		Sort:    SortSpec{Column: "name", Direction: Asc},
		Page:    PageSpec{Page: 2, PageSize: 2},
	})

	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 2, view.TotalPages)
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, []string{"Dora"}, names(view.Rows))
}

func TestApplyClampsOutOfRangePage(t *testing.T) {
	e := testEngine()
	view := e.Apply(sampleRows(), Query{Page: PageSpec{Page: 99, PageSize: 1}})
	assert.Equal(t, 2, view.Page)
	require.Len(t, view.Rows, 1)
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
