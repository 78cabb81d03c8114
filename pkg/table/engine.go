package table

import (
	"sort"
	"strings"
)

// Direction of a column sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ColumnType selects the comparison strategy used when sorting a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumeric
)

// SortSpec holds the single active sort column and direction. An empty
// Column means input order is preserved.
type SortSpec struct {
	Column    string    `json:"column" form:"sort"`
	Direction Direction `json:"direction" form:"dir"`
}

// PageSpec holds the current page and page size.
type PageSpec struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// FilterSpec maps a filter key to its matcher value. Empty values carry
// no constraint. Active filters are combined with logical AND.
type FilterSpec map[string]string

// Column describes one table column for an entity. Resolve returns the
// display value for a record, with any lookups (role, state, city names)
// already applied; it is what sorting, searching and CSV export all use.
// Numeric is consulted instead when Type is TypeNumeric.
type Column[T any] struct {
	Key        string
	Title      string
	Type       ColumnType
	Resolve    func(T) string
	Numeric    func(T) float64
	Sortable   bool
	Searchable bool
}

// Predicate reports whether a record matches a single filter value.
type Predicate[T any] func(record T, value string) bool

// Engine transforms a raw record collection into the visible page of
// rows for one entity screen. It is pure and synchronous; the result is
// re-derived from scratch on every call.
type Engine[T any] struct {
	Columns []Column[T]
	Filters map[string]Predicate[T]
}

// Query bundles every input that shapes the visible view.
type Query struct {
	Search  string
	Filters FilterSpec
	Sort    SortSpec
	Page    PageSpec
}

// View is the result of applying a Query: the current page of rows plus
// the pagination metadata derived from the filtered set.
type View[T any] struct {
	Rows       []T `json:"records"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// ContainsFold builds a case-insensitive substring predicate.
func ContainsFold[T any](get func(T) string) Predicate[T] {
	return func(record T, value string) bool {
		return strings.Contains(strings.ToLower(get(record)), strings.ToLower(value))
	}
}

// Equals builds an exact-equality predicate, used for identifier filters.
func Equals[T any](get func(T) string) Predicate[T] {
	return func(record T, value string) bool {
		return get(record) == value
	}
}

// ActiveFlag builds the status predicate: "active" matches records whose
// flag is true, "inactive" those whose flag is false. Any other value
// matches nothing.
func ActiveFlag[T any](get func(T) bool) Predicate[T] {
	return func(record T, value string) bool {
		switch value {
		case "active":
			return get(record)
		case "inactive":
			return !get(record)
		default:
			return false
		}
	}
}

func (e *Engine[T]) column(key string) *Column[T] {
	for i := range e.Columns {
		if e.Columns[i].Key == key {
			return &e.Columns[i]
		}
	}
	return nil
}

func (e *Engine[T]) resolve(c *Column[T], record T) string {
	if c == nil || c.Resolve == nil {
		return ""
	}
	return c.Resolve(record)
}

// Filter returns the records matching the free-text search term AND
// every non-empty filter in spec. The search term matches if any
// searchable column's display value contains it case-insensitively; a
// trimmed-empty term matches everything. Filter keys without a
// registered predicate are ignored.
func (e *Engine[T]) Filter(records []T, search string, spec FilterSpec) []T {
	term := strings.ToLower(strings.TrimSpace(search))

	out := make([]T, 0, len(records))
	for _, record := range records {
		if term != "" && !e.matchesSearch(record, term) {
			continue
		}
		if !e.matchesFilters(record, spec) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func (e *Engine[T]) matchesSearch(record T, term string) bool {
	for i := range e.Columns {
		c := &e.Columns[i]
		if !c.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(e.resolve(c, record)), term) {
			return true
		}
	}
	return false
}

func (e *Engine[T]) matchesFilters(record T, spec FilterSpec) bool {
	for key, value := range spec {
		if value == "" {
			continue
		}
		pred, ok := e.Filters[key]
		if !ok {
			continue
		}
		if !pred(record, value) {
			return false
		}
	}
	return true
}

// Sort orders records by spec.Column. An empty column preserves
// input order. Missing values resolve to the empty string, which sorts
// first ascending. The comparison is a total order per column type;
// equal keys keep no particular order.
func (e *Engine[T]) Sort(records []T, spec SortSpec) []T {
	out := make([]T, len(records))
	copy(out, records)

	if spec.Column == "" {
		return out
	}
	c := e.column(spec.Column)
	if c == nil {
		return out
	}

	less := func(a, b T) bool {
		if c.Type == TypeNumeric && c.Numeric != nil {
			return c.Numeric(a) < c.Numeric(b)
		}
		return e.resolve(c, a) < e.resolve(c, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if spec.Direction == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Paginate slices out the requested page. Out-of-range pages yield an
// empty slice, never a panic.
func Paginate[T any](records []T, spec PageSpec) []T {
	if spec.PageSize <= 0 || spec.Page < 1 {
		return []T{}
	}
	start := (spec.Page - 1) * spec.PageSize
	if start >= len(records) {
		return []T{}
	}
	end := start + spec.PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// TotalPages returns the page count for total records, minimum 1 even
// for an empty set.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps page into [1, TotalPages(total, pageSize)].
func ClampPage(page, pageSize, total int) int {
	if page < 1 {
		return 1
	}
	if max := TotalPages(total, pageSize); page > max {
		return max
	}
	return page
}

// Apply runs the full filter, sort, clamp, paginate pipeline and returns
// the visible page together with pagination metadata.
func (e *Engine[T]) Apply(records []T, q Query) View[T] {
	if q.Page.PageSize <= 0 {
		q.Page.PageSize = DefaultPageSize
	}

	filtered := e.Filter(records, q.Search, q.Filters)
	sorted := e.Sort(filtered, q.Sort)

	page := ClampPage(q.Page.Page, q.Page.PageSize, len(sorted))
	rows := Paginate(sorted, PageSpec{Page: page, PageSize: q.Page.PageSize})

	return View[T]{
		Rows:       rows,
		Total:      len(sorted),
		Page:       page,
		PageSize:   q.Page.PageSize,
		TotalPages: TotalPages(len(sorted), q.Page.PageSize),
	}
}

// DefaultPageSize is used when a query carries no page size.
const DefaultPageSize = 10
