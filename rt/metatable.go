package rt

// metatableOf returns the metatable consulted for metamethod dispatch:
// tables and userdata carry their own, strings share the runtime's string
// metatable, everything else has none (§4.4.1).
func metatableOf(rt *Runtime, v Value) *Table {
	switch x := v.(type) {
	case *Table:
		return x.meta
	case *Userdata:
		return x.Meta
	case string:
		return rt.stringMeta
	}
	return nil
}

func metamethod(rt *Runtime, v Value, event string) Value {
	mt := metatableOf(rt, v)
	if mt == nil {
		return nil
	}
	return mt.Get(event)
}

// Index implements table/userdata/string indexing with the __index chain
// (§4.4.1), bounded to avoid infinite metatable loops.
func Index(rt *Runtime, obj, key Value) Value {
	for depth := 0; depth < rt.depthLimit; depth++ {
		if t, ok := obj.(*Table); ok {
			v := t.Get(key)
			if v != nil {
				return v
			}
			h := metamethod(rt, obj, "__index")
			if h == nil {
				return nil
			}
			if isCallable(h) {
				res, err := Call(rt, h, []Value{obj, key})
				if err != nil {
					panic(err)
				}
				if len(res) == 0 {
					return nil
				}
				return res[0]
			}
			obj = h
			continue
		}
		h := metamethod(rt, obj, "__index")
		if h == nil {
			TypeErrorf(rt, "index", obj)
		}
		if isCallable(h) {
			res, err := Call(rt, h, []Value{obj, key})
			if err != nil {
				panic(err)
			}
			if len(res) == 0 {
				return nil
			}
			return res[0]
		}
		obj = h
	}
	Raisef(rt, "'__index' chain too long; possible loop")
	return nil
}

// NewIndex implements assignment with the __newindex chain (§4.4.1).
func NewIndex(rt *Runtime, obj, key, val Value) {
	for depth := 0; depth < rt.depthLimit; depth++ {
		t, ok := obj.(*Table)
		if ok {
			if t.Get(key) != nil {
				if err := t.Set(key, val); err != nil {
					Raisef(rt, "%s", err.Error())
				}
				return
			}
			h := metamethod(rt, obj, "__newindex")
			if h == nil {
				if err := t.Set(key, val); err != nil {
					Raisef(rt, "%s", err.Error())
				}
				return
			}
			if isCallable(h) {
				if _, err := Call(rt, h, []Value{obj, key, val}); err != nil {
					panic(err)
				}
				return
			}
			obj = h
			continue
		}
		h := metamethod(rt, obj, "__newindex")
		if h == nil {
			TypeErrorf(rt, "index", obj)
		}
		if isCallable(h) {
			if _, err := Call(rt, h, []Value{obj, key, val}); err != nil {
				panic(err)
			}
			return
		}
		obj = h
	}
	Raisef(rt, "'__newindex' chain too long; possible loop")
}

func isCallable(v Value) bool {
	switch v.(type) {
	case *Closure, *GoFunc:
		return true
	}
	return false
}

// binMeta dispatches an arithmetic/concat/bitwise event to whichever
// operand carries it, per §4.4.1's "first operand, then second" rule.
func binMeta(rt *Runtime, event string, a, b Value) (Value, bool) {
	if h := metamethod(rt, a, event); h != nil {
		res, err := Call(rt, h, []Value{a, b})
		if err != nil {
			panic(err)
		}
		return first(res), true
	}
	if h := metamethod(rt, b, event); h != nil {
		res, err := Call(rt, h, []Value{a, b})
		if err != nil {
			panic(err)
		}
		return first(res), true
	}
	return nil, false
}

func unMeta(rt *Runtime, event string, a Value) (Value, bool) {
	if h := metamethod(rt, a, event); h != nil {
		res, err := Call(rt, h, []Value{a, a})
		if err != nil {
			panic(err)
		}
		return first(res), true
	}
	return nil, false
}

func first(vs []Value) Value {
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Eq implements == with the §4.4.1 __eq rule: raw-equal first, then (only
// when both operands are tables, or both userdata) consult __eq.
func Eq(rt *Runtime, a, b Value) bool {
	if RawEq(a, b) {
		return true
	}
	ta, aok := a.(*Table)
	tb, bok := b.(*Table)
	if aok && bok {
		if v, ok := binMetaTables(rt, "__eq", ta, tb); ok {
			return Truthy(v)
		}
		return false
	}
	ua, aok := a.(*Userdata)
	ub, bok := b.(*Userdata)
	if aok && bok {
		if h := metamethod(rt, ua, "__eq"); h != nil {
			res, err := Call(rt, h, []Value{a, b})
			if err != nil {
				panic(err)
			}
			return Truthy(first(res))
		}
		_ = ub
	}
	return false
}

func binMetaTables(rt *Runtime, event string, a, b *Table) (Value, bool) {
	if h := metamethod(rt, a, event); h != nil {
		res, err := Call(rt, h, []Value{a, b})
		if err != nil {
			panic(err)
		}
		return first(res), true
	}
	if h := metamethod(rt, b, event); h != nil {
		res, err := Call(rt, h, []Value{a, b})
		if err != nil {
			panic(err)
		}
		return first(res), true
	}
	return nil, false
}

// RawEq is primitive equality (§3.1): numbers compare by mathematical
// value across int/float, everything else by identity or Go equality.
func RawEq(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
		return false
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
		return false
	}
	return a == b
}

// Lt/Le implement < and <= with __lt/__le fallback; strings compare
// byte-lexicographically, numbers by value across subtypes (§3.1, §4.4.1).
func Lt(rt *Runtime, a, b Value) bool {
	if v, ok := numLess(a, b); ok {
		return v
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa < sb
		}
	}
	if v, ok := binMeta(rt, "__lt", a, b); ok {
		return Truthy(v)
	}
	Raisef(rt, "attempt to compare %s with %s", TypeOf(a).String(), TypeOf(b).String())
	return false
}

func Le(rt *Runtime, a, b Value) bool {
	if v, ok := numLessEq(a, b); ok {
		return v
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa <= sb
		}
	}
	if v, ok := binMeta(rt, "__le", a, b); ok {
		return Truthy(v)
	}
	if v, ok := binMeta(rt, "__lt", b, a); ok {
		return !Truthy(v)
	}
	Raisef(rt, "attempt to compare %s with %s", TypeOf(a).String(), TypeOf(b).String())
	return false
}

func numLess(a, b Value) (bool, bool) {
	af, aok := ToFloat(a)
	bf, bok := ToFloat(b)
	if !aok || !bok {
		return false, false
	}
	if _, isNum := a.(int64); !isNum {
		if _, isNum := a.(float64); !isNum {
			return false, false
		}
	}
	if _, isNum := b.(int64); !isNum {
		if _, isNum := b.(float64); !isNum {
			return false, false
		}
	}
	return af < bf, true
}

func numLessEq(a, b Value) (bool, bool) {
	lt, ok := numLess(a, b)
	if !ok {
		return false, false
	}
	eq := RawEq(a, b)
	return lt || eq, true
}

// Concat implements .. with __concat fallback; numbers and strings coerce
// (§3.2, §4.4.1), anything else requires a metamethod.
func Concat(rt *Runtime, a, b Value) Value {
	as, aok := concatOperand(a)
	bs, bok := concatOperand(b)
	if aok && bok {
		return as + bs
	}
	if v, ok := binMeta(rt, "__concat", a, b); ok {
		return v
	}
	bad := a
	if aok {
		bad = b
	}
	TypeErrorf(rt, "concatenate", bad)
	return nil
}

func concatOperand(v Value) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int64, float64:
		return NumberToString(x), true
	}
	return "", false
}

// Len implements # with __len fallback (§4.4.1); tables without a __len
// use the border rule, strings their byte length.
func Len(rt *Runtime, v Value) Value {
	if h := metamethod(rt, v, "__len"); h != nil {
		res, err := Call(rt, h, []Value{v})
		if err != nil {
			panic(err)
		}
		return first(res)
	}
	switch x := v.(type) {
	case string:
		return int64(len(x))
	case *Table:
		return x.Len()
	}
	TypeErrorf(rt, "get length of", v)
	return nil
}

// ToStringMeta resolves tostring() including the __tostring/__name
// protocol of §4.4.1.
func ToStringMeta(rt *Runtime, v Value) string {
	if h := metamethod(rt, v, "__tostring"); h != nil {
		res, err := Call(rt, h, []Value{v})
		if err != nil {
			panic(err)
		}
		if s, ok := first(res).(string); ok {
			return s
		}
		Raisef(rt, "'__tostring' must return a string")
	}
	if mt := metatableOf(rt, v); mt != nil {
		if name, ok := mt.Get("__name").(string); ok {
			switch v.(type) {
			case *Table, *Userdata:
				return name + ": "
			}
		}
	}
	return defaultToString(v)
}
