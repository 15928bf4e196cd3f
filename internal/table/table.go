package table

// Row is an ordered mapping from column name to cell value.
// Rows from one upload share the first row's column set but may omit any key.
type Row struct {
	keys  []string
	cells map[string]Value
}

// NewRow builds a row from parallel key and value slices, keeping key order.
// Keys without a matching value are set to Null.
func NewRow(keys []string, vals []Value) Row {
	r := Row{keys: make([]string, 0, len(keys)), cells: make(map[string]Value, len(keys))}
	for i, k := range keys {
		v := Null()
		if i < len(vals) {
			v = vals[i]
		}
		r.Set(k, v)
	}
	return r
}

// Set assigns a cell. A new key is appended to the key order; an existing key keeps its position.
func (r *Row) Set(key string, v Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = v
}

// Get returns the cell for key, or Null when the row does not carry it.
func (r Row) Get(key string) Value {
	return r.cells[key]
}

// Has reports whether the row carries key at all (even as Null).
func (r Row) Has(key string) bool {
	_, ok := r.cells[key]
	return ok
}

// Keys returns the row's column names in insertion order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Row) Len() int { return len(r.keys) }

// Table is an ordered sequence of rows.
type Table []Row

// Columns returns the column inventory: the first row's keys in first-seen order.
// An empty table has no columns.
func (t Table) Columns() []string {
	if len(t) == 0 {
		return []string{}
	}
	return t[0].Keys()
}
