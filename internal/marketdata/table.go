package marketdata

import (
	"sync"
	"sync/atomic"

	"options-analytics-engine/internal/occsymbol"
)

// DefaultCapacity mirrors the upstream feed's fixed-size symbol table;
// the original C implementation sized this array at compile time, we
// just make it a constructor argument instead.
const DefaultCapacity = 100

// Table is the single options table: one Row per live contract
// symbol. Inserts are single-writer (guarded by mu); once a Row
// exists, concurrent readers/writers touch only that row's own lock.
type Table struct {
	mu       sync.Mutex
	rows     map[string]*Row
	order    []string
	capacity int

	capacityExceeded int64
}

// NewTable creates a table that rejects new symbols once it holds
// capacity rows.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{rows: make(map[string]*Row, capacity), capacity: capacity}
}

// Upsert returns the existing row for symbol, or parses and inserts a
// new one. Returns ErrParse if the symbol isn't valid OCC format, or
// ErrCapacityExceeded if the table is full and symbol is new.
func (t *Table) Upsert(symbol string) (*Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row, ok := t.rows[symbol]; ok {
		return row, nil
	}

	details, err := occsymbol.Parse(symbol)
	if err != nil {
		return nil, ErrParse
	}

	if len(t.rows) >= t.capacity {
		atomic.AddInt64(&t.capacityExceeded, 1)
		return nil, ErrCapacityExceeded
	}

	row := newRow(details)
	t.rows[symbol] = row
	t.order = append(t.order, symbol)
	return row, nil
}

// Get returns the row for symbol without creating it.
func (t *Table) Get(symbol string) (*Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[symbol]
	return row, ok
}

// Len returns the current number of tracked symbols.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// CapacityExceededCount returns how many inserts were rejected for
// exceeding capacity since the table was created.
func (t *Table) CapacityExceededCount() int64 {
	return atomic.LoadInt64(&t.capacityExceeded)
}

// Snapshot returns a copy of every row's current state, in insertion
// order, for rendering or smile aggregation.
func (t *Table) Snapshot() []Snapshot {
	t.mu.Lock()
	symbols := make([]string, len(t.order))
	copy(symbols, t.order)
	rows := make([]*Row, len(symbols))
	for i, sym := range symbols {
		rows[i] = t.rows[sym]
	}
	t.mu.Unlock()

	out := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, row.Snapshot())
	}
	return out
}

// Underlyings returns the distinct underlying symbols referenced by
// the table, used to drive equities-feed subscriptions.
func (t *Table) Underlyings() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.rows {
		u := row.Contract.Underlying
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
