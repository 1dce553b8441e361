// Package stdlib implements the Lua standard library (§5): the base
// library plus string, table, math, os, io, utf8, coroutine and package.
// Every entry point is a *rt.GoFunc registered into rt.Runtime.Globals,
// grounded on the teacher's one-function-per-builtin stdlib/lib_*.go
// layout, adapted from its indirect LkState-stack calling convention to
// this interpreter's direct []rt.Value argument slices.
package stdlib

import "git.lolli.tech/lollipopkit/lua54/rt"

// OpenAll installs every standard library into rt's global table. A
// fresh Runtime is otherwise empty (no hidden auto-registration), mirroring
// the explicit luaL_openlibs call of the reference implementation.
func OpenAll(r *rt.Runtime) {
	openBase(r)
	openString(r)
	openTable(r)
	openMath(r)
	openOS(r)
	openIO(r)
	openUTF8(r)
	openCoroutine(r)
	openPackage(r)
}

func reg(t *rt.Table, name string, fn func(*rt.Runtime, []rt.Value) ([]rt.Value, error)) {
	_ = t.Set(name, rt.NewGoFunc(name, fn))
}

func arg(args []rt.Value, i int) rt.Value {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func newLibTable(r *rt.Runtime, name string) *rt.Table {
	t := rt.NewTable()
	_ = r.Globals.Set(name, t)
	return t
}
