package stdlib

import (
	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openCoroutine(r *rt.Runtime) {
	t := newLibTable(r, "coroutine")
	reg(t, "create", coCreate)
	reg(t, "resume", coResume)
	reg(t, "yield", coYield)
	reg(t, "status", coStatus)
	reg(t, "isyieldable", coIsYieldable)
	reg(t, "running", coRunning)
	reg(t, "wrap", coWrap)
	reg(t, "close", coClose)
}

func coCreate(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	fn := checkFunction(r, "create", args, 0)
	co := rt.NewCoroutine(r, fn)
	return []rt.Value{co}, nil
}

func coResume(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	co, ok := arg(args, 0).(*rt.Coroutine)
	if !ok {
		argErrorf(r, "resume", 1, "coroutine expected")
	}
	ok2, results := rt.Resume(r, co, args[1:])
	out := make([]rt.Value, 0, len(results)+1)
	out = append(out, ok2)
	out = append(out, results...)
	return out, nil
}

func coYield(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return rt.Yield(r, args), nil
}

func coStatus(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	co, ok := arg(args, 0).(*rt.Coroutine)
	if !ok {
		argErrorf(r, "status", 1, "coroutine expected")
	}
	return []rt.Value{co.Status()}, nil
}

func coIsYieldable(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return []rt.Value{rt.IsYieldable(r)}, nil
}

func coRunning(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	cur := r.Current()
	return []rt.Value{cur, cur == r.Main()}, nil
}

func coWrap(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	fn := checkFunction(r, "wrap", args, 0)
	co := rt.NewCoroutine(r, fn)
	wrapper := rt.NewGoFunc("wrapped-coroutine", func(r *rt.Runtime, wargs []rt.Value) ([]rt.Value, error) {
		ok, results := rt.Resume(r, co, wargs)
		if !ok {
			var msg rt.Value
			if len(results) > 0 {
				msg = results[0]
			}
			return nil, &rt.LuaError{Value: msg}
		}
		return results, nil
	})
	return []rt.Value{wrapper}, nil
}

func coClose(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	co, ok := arg(args, 0).(*rt.Coroutine)
	if !ok {
		argErrorf(r, "close", 1, "coroutine expected")
	}
	co.Close()
	return []rt.Value{true}, nil
}
