package rt

// Frame is one activation record on a coroutine's call stack.
type Frame struct {
	locals     []Value
	varargs    []Value
	openUpvals map[int]*Upvalue // slot -> shared cell, created on first capture
	closure    *Closure
	toClose    []Value // not populated: execBlock tracks each block's to-be-closed values itself
	line       int
	funcName   string
	co         *Coroutine
}

func newFrame(numLocals int, closure *Closure, co *Coroutine) *Frame {
	return &Frame{
		locals:  make([]Value, numLocals),
		closure: closure,
		co:      co,
	}
}

// upvalueFor returns the shared open-upvalue cell for a local slot,
// creating it on first use (§3.4, §9 "shared upvalues").
func (f *Frame) upvalueFor(slot int) *Upvalue {
	if f.openUpvals == nil {
		f.openUpvals = make(map[int]*Upvalue)
	}
	if uv, ok := f.openUpvals[slot]; ok {
		return uv
	}
	uv := &Upvalue{frame: f, slot: slot}
	f.openUpvals[slot] = uv
	return uv
}

// closeUpvalues closes every open upvalue referencing this frame; called
// when the frame returns (the whole function body is one "scope" for
// upvalue-closing purposes in this tree-walking implementation).
func (f *Frame) closeUpvalues() {
	for _, uv := range f.openUpvals {
		uv.close()
	}
}

// closeUpvaluesFrom closes only the open upvalues at or above minSlot,
// called at the end of each loop iteration so a closure created inside a
// loop body captures that iteration's local rather than a final shared
// one, per §3.4's "fresh local each iteration" rule for loop variables.
func (f *Frame) closeUpvaluesFrom(minSlot int) {
	for slot, uv := range f.openUpvals {
		if slot >= minSlot {
			uv.close()
			delete(f.openUpvals, slot)
		}
	}
}
