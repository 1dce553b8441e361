package rt

// Runtime is the explicit global interpreter state threaded through every
// call (§9 "no hidden singleton"): the global table, the shared string
// metatable, and the coroutine registry including the currently-running
// coroutine.
type Runtime struct {
	Globals    *Table
	stringMeta *Table
	main       *Coroutine
	current    *Coroutine

	// Require/package bookkeeping, populated by the package library.
	Loaded  *Table
	Preload *Table

	depthLimit int // bound on __index/__newindex recursion, §4.4.1
}

func NewRuntime() *Runtime {
	r := &Runtime{
		Globals:    NewTable(),
		Loaded:     NewTable(),
		Preload:    NewTable(),
		depthLimit: 2000,
	}
	r.main = newCoroutine(r, nil)
	r.main.status = coRunning
	r.current = r.main
	return r
}

func (rt *Runtime) StringMetatable() *Table     { return rt.stringMeta }
func (rt *Runtime) SetStringMetatable(t *Table) { rt.stringMeta = t }

func (rt *Runtime) Current() *Coroutine { return rt.current }
func (rt *Runtime) Main() *Coroutine    { return rt.main }

func (rt *Runtime) pushFrame(f *Frame) {
	co := rt.current
	co.frames = append(co.frames, f)
}

func (rt *Runtime) popFrame() {
	co := rt.current
	f := co.frames[len(co.frames)-1]
	f.closeUpvalues()
	co.frames = co.frames[:len(co.frames)-1]
}

func (rt *Runtime) topFrame() *Frame {
	co := rt.current
	if len(co.frames) == 0 {
		return nil
	}
	return co.frames[len(co.frames)-1]
}

// currentFrame returns the frame `level` calls up from the top (level 1
// is the currently-executing frame), used by error() location prefixing.
func (rt *Runtime) currentFrame(level int) *Frame {
	co := rt.current
	idx := len(co.frames) - level
	if idx < 0 || idx >= len(co.frames) {
		return nil
	}
	return co.frames[idx]
}
