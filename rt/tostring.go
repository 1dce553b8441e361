package rt

import (
	"fmt"
	"reflect"
)

// defaultToString implements the built-in rendering of §4.2's tostring,
// before any __tostring/__name metamethod is consulted.
func defaultToString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64, float64:
		return NumberToString(x)
	case string:
		return x
	case *Table:
		return "table: " + addrString(v)
	case *Closure:
		return "function: " + addrString(v)
	case *GoFunc:
		return "function: builtin: " + x.Name
	case *Coroutine:
		return "thread: " + addrString(v)
	case *Userdata:
		return "userdata: " + addrString(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PointerString implements %p: the address-like identity of a reference
// value (table, closure, userdata, thread), or "(null)" for anything else.
func PointerString(v Value) string {
	switch v.(type) {
	case *Table, *Closure, *GoFunc, *Coroutine, *Userdata:
		return addrString(v)
	default:
		return "(null)"
	}
}

// addrString gives each reference value a stable-for-the-run identity
// string, standing in for C Lua's pointer-derived "0x...." addresses.
func addrString(v Value) string {
	return fmt.Sprintf("0x%012x", addrOf(v))
}

func addrOf(v Value) uintptr {
	switch x := v.(type) {
	case *Table:
		return ptrBits(x)
	case *Closure:
		return ptrBits(x)
	case *GoFunc:
		return ptrBits(x)
	case *Coroutine:
		return ptrBits(x)
	case *Userdata:
		return ptrBits(x)
	}
	return 0
}

func ptrBits(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}
