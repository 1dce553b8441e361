package rt

import "fmt"

// Call is the single call boundary (§4.3, §4.4.1 __call): it accepts a
// Closure, a GoFunc, or anything with a __call metamethod, and always
// returns (results, error) rather than letting a Lua-level raise escape
// as a bare panic — callers that want the raise to keep propagating
// re-panic the returned error themselves (pcall/xpcall/resume are the
// only places that don't).
func Call(rt *Runtime, fn Value, args []Value) (results []Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(*LuaError); ok {
				err = le
				return
			}
			err = &LuaError{Value: fmt.Sprintf("%v", r)}
		}
	}()

	switch f := fn.(type) {
	case *Closure:
		return callClosure(rt, f, args)
	case *GoFunc:
		res, ferr := f.Fn(rt, args)
		if ferr != nil {
			if le, ok := ferr.(*LuaError); ok {
				return nil, le
			}
			return nil, &LuaError{Value: ferr.Error()}
		}
		return res, nil
	default:
		if h := metamethod(rt, fn, "__call"); h != nil {
			newArgs := make([]Value, 0, len(args)+1)
			newArgs = append(newArgs, fn)
			newArgs = append(newArgs, args...)
			return Call(rt, h, newArgs)
		}
		TypeErrorf(rt, "call", fn)
		return nil, nil
	}
}

func callClosure(rt *Runtime, c *Closure, args []Value) ([]Value, error) {
	proto := c.Proto.Proto
	fr := newFrame(proto.NumLocals, c, rt.current)

	np := len(c.Proto.ParList)
	for i := 0; i < np; i++ {
		if i < len(args) {
			fr.locals[i] = args[i]
		}
	}
	if proto.IsVararg && len(args) > np {
		fr.varargs = append([]Value(nil), args[np:]...)
	}

	rt.pushFrame(fr)
	defer rt.popFrame()

	result := execBlock(rt, fr, c.Proto.Block)
	if result.kind == ctrlReturn {
		return result.values, nil
	}
	return nil, nil
}

// CallMulti calls fn and returns all of its results; an error from the
// call is raised as a Lua error instead of being returned.
func CallMulti(rt *Runtime, fn Value, args []Value) []Value {
	res, err := Call(rt, fn, args)
	if err != nil {
		panic(err)
	}
	return res
}
