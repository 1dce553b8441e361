package rt

import "fmt"

type coStatus int

const (
	coSuspended coStatus = iota
	coRunning
	coNormal
	coDead
)

func (s coStatus) String() string {
	switch s {
	case coSuspended:
		return "suspended"
	case coRunning:
		return "running"
	case coNormal:
		return "normal"
	case coDead:
		return "dead"
	default:
		return "?"
	}
}

// Coroutine is a stackful Lua thread (§3.5) implemented as a goroutine
// parked on a pair of unbuffered handoff channels. Only one of a
// coroutine's goroutine and its resumer ever runs at a time, so the
// Frame/Table/Closure types above need no synchronization.
type Coroutine struct {
	rt       *Runtime
	status   coStatus
	frames   []*Frame
	resumer  *Coroutine
	fn       Value // the Lua function or GoFunc this coroutine runs
	toCo     chan []Value // resumer -> coroutine: resume args / first call args
	fromCo   chan coResult
	started  bool
}

type coResult struct {
	kind   int // 0 = yield, 1 = return, 2 = error
	values []Value
	err    *LuaError
}

const (
	coYield  = 0
	coReturn = 1
	coError  = 2
)

func newCoroutine(rt *Runtime, fn Value) *Coroutine {
	return &Coroutine{
		rt:     rt,
		status: coSuspended,
		fn:     fn,
		toCo:   make(chan []Value),
		fromCo: make(chan coResult),
	}
}

func NewCoroutine(rt *Runtime, fn Value) *Coroutine { return newCoroutine(rt, fn) }

func (co *Coroutine) Status() string { return co.status.String() }

// Resume implements coroutine.resume: switch execution to co, blocking
// the caller until co yields, returns, or errors.
func Resume(rt *Runtime, co *Coroutine, args []Value) (ok bool, results []Value) {
	if co.status == coDead {
		return false, []Value{"cannot resume dead coroutine"}
	}
	if co.status != coSuspended {
		return false, []Value{"cannot resume non-suspended coroutine"}
	}

	caller := rt.current
	caller.status = coNormal
	co.resumer = caller
	co.status = coRunning
	rt.current = co

	if !co.started {
		co.started = true
		go co.body(rt, args)
	} else {
		co.toCo <- args
	}

	res := <-co.fromCo

	rt.current = caller
	caller.status = coRunning

	switch res.kind {
	case coYield:
		co.status = coSuspended
		return true, res.values
	case coReturn:
		co.status = coDead
		return true, res.values
	default:
		co.status = coDead
		if res.err != nil {
			return false, []Value{res.err.Value}
		}
		return false, []Value{"unknown error"}
	}
}

func (co *Coroutine) body(rt *Runtime, args []Value) {
	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(*LuaError); ok {
				co.fromCo <- coResult{kind: coError, err: le}
				return
			}
			co.fromCo <- coResult{kind: coError, err: &LuaError{Value: fmt.Sprintf("%v", r)}}
		}
	}()
	results, err := Call(rt, co.fn, args)
	if err != nil {
		if le, ok := err.(*LuaError); ok {
			co.fromCo <- coResult{kind: coError, err: le}
			return
		}
		co.fromCo <- coResult{kind: coError, err: &LuaError{Value: err.Error()}}
		return
	}
	co.fromCo <- coResult{kind: coReturn, values: results}
}

// Yield implements coroutine.yield from inside the running coroutine.
func Yield(rt *Runtime, args []Value) []Value {
	co := rt.current
	if co == rt.main {
		Raisef(rt, "attempt to yield from outside a coroutine")
	}
	co.fromCo <- coResult{kind: coYield, values: args}
	return <-co.toCo
}

func IsYieldable(rt *Runtime) bool {
	return rt.current != rt.main
}

// Close implements coroutine.close: marks a suspended or dead coroutine
// dead without resuming it. Running/normal coroutines cannot be closed.
func (co *Coroutine) Close() {
	if co.status == coSuspended || co.status == coDead {
		co.status = coDead
	}
}
