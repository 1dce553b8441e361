package rt

import "math"

// Table implements §3.3: an array part for keys 1..n and a hash part for
// everything else, sharing one value space. Grounded on the teacher's
// lkTable (state/lk_table.go), generalized to Lua's full key-normalization
// and border rules.
type Table struct {
	arr  []Value // arr[i] is the value for integer key i+1
	hash map[Value]Value
	meta *Table

	// iteration support for next(), mirroring lk_table.go's keys/lastKey
	// cache: rebuilt at the start of every traversal (next with a nil key)
	// and on any later call after a Set since the last rebuild.
	iterKeys    []Value
	iterDirty   bool
}

func NewTable() *Table {
	return &Table{iterDirty: true}
}

func NewTableSize(narr, nrec int) *Table {
	t := &Table{iterDirty: true}
	if narr > 0 {
		t.arr = make([]Value, 0, narr)
	}
	if nrec > 0 {
		t.hash = make(map[Value]Value, nrec)
	}
	return t
}

func (t *Table) Metatable() *Table     { return t.meta }
func (t *Table) SetMetatable(m *Table) { t.meta = m }

// normalizeKey stores integral float keys as the equivalent Integer per
// §3.3's invariant.
func normalizeKey(key Value) Value {
	if f, ok := key.(float64); ok {
		if i, ok := FloatToInteger(f); ok {
			return i
		}
	}
	return key
}

func (t *Table) Get(key Value) Value {
	key = normalizeKey(key)
	if i, ok := key.(int64); ok && i >= 1 && i <= int64(len(t.arr)) {
		return t.arr[i-1]
	}
	if t.hash == nil {
		return nil
	}
	return t.hash[key]
}

// Set implements raw assignment, including the nil-key and NaN-key
// rejections and the nil-value-deletes rule of §3.3.
func (t *Table) Set(key, val Value) error {
	if key == nil {
		return errString("table index is nil")
	}
	if f, ok := key.(float64); ok && math.IsNaN(f) {
		return errString("table index is NaN")
	}
	key = normalizeKey(key)
	t.iterDirty = true
	if i, ok := key.(int64); ok && i >= 1 {
		n := int64(len(t.arr))
		switch {
		case i <= n:
			t.arr[i-1] = val
			if i == n && val == nil {
				t.shrinkArray()
			}
			return nil
		case i == n+1:
			if t.hash != nil {
				delete(t.hash, key)
			}
			if val != nil {
				t.arr = append(t.arr, val)
				t.absorbFromHash()
			}
			return nil
		}
	}
	if val == nil {
		if t.hash != nil {
			delete(t.hash, key)
		}
		return nil
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value, 8)
	}
	t.hash[key] = val
	return nil
}

func (t *Table) shrinkArray() {
	i := len(t.arr)
	for i > 0 && t.arr[i-1] == nil {
		i--
	}
	t.arr = t.arr[:i]
}

// absorbFromHash pulls any contiguous integer keys that were spilled into
// the hash part back into the array part after an append extends a
// border, mirroring lk_table.go's _expandArray.
func (t *Table) absorbFromHash() {
	if t.hash == nil {
		return
	}
	for {
		next := int64(len(t.arr)) + 1
		v, ok := t.hash[next]
		if !ok {
			return
		}
		delete(t.hash, next)
		t.arr = append(t.arr, v)
	}
}

// Len returns a border per §3.3: for a table without holes this is simply
// the array-part length, which is what table.pack/unpack/insert rely on.
func (t *Table) Len() int64 {
	n := len(t.arr)
	for n > 0 && t.arr[n-1] == nil {
		n--
	}
	if n == len(t.arr) {
		// check whether the border extends into the hash part (a table
		// built purely with t[k]=v for large k with no array growth).
		if t.hash != nil {
			for {
				if _, ok := t.hash[int64(n)+1]; !ok {
					break
				}
				n++
			}
		}
	}
	return int64(n)
}

// Next implements pairs()/next() iteration order. Order across the hash
// part is unspecified per §9 Open Questions; array-part keys are always
// visited first, in order.
func (t *Table) Next(key Value) (Value, Value, bool) {
	if t.iterDirty || key == nil {
		t.rebuildIterKeys()
	}
	key = normalizeKey(key)
	if key == nil {
		if len(t.iterKeys) == 0 {
			return nil, nil, true
		}
		k := t.iterKeys[0]
		return k, t.Get(k), true
	}
	for i, k := range t.iterKeys {
		if k == key {
			if i+1 >= len(t.iterKeys) {
				return nil, nil, true
			}
			nk := t.iterKeys[i+1]
			return nk, t.Get(nk), true
		}
	}
	return nil, nil, false
}

func (t *Table) rebuildIterKeys() {
	keys := make([]Value, 0, len(t.arr)+len(t.hash))
	for i, v := range t.arr {
		if v != nil {
			keys = append(keys, int64(i+1))
		}
	}
	for k, v := range t.hash {
		if v != nil {
			keys = append(keys, k)
		}
	}
	t.iterKeys = keys
	t.iterDirty = false
}

// Append stores v at t.Len()+1, pushing it past the current border.
func (t *Table) Append(v Value) {
	_ = t.Set(t.Len()+1, v)
}

type errString string

func (e errString) Error() string { return string(e) }
