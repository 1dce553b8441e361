package rt

import "fmt"

// LuaError is the payload carried by a Go panic representing a Lua
// `error()`/raise (§7). It is recovered exactly at pcall/xpcall,
// coroutine.resume, and the top-level chunk-run boundary — never left to
// escape as a bare Go panic.
type LuaError struct {
	Value     Value
	Traceback []string
}

func (e *LuaError) Error() string {
	if s, ok := e.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", e.Value)
}

// Raise panics with a LuaError, prefixing a string message with
// "chunk:line:" unless level==0, per §7.
func Raise(rt *Runtime, level int, value Value) {
	if s, ok := value.(string); ok && level != 0 {
		value = rt.where(level) + s
	}
	panic(&LuaError{Value: value})
}

// Raisef builds a formatted string error (always prefixed, level 1).
func Raisef(rt *Runtime, format string, a ...any) {
	Raise(rt, 1, fmt.Sprintf(format, a...))
}

// TypeErrorf raises the canonical "attempt to <verb> a <type> value"
// message of §4.4.1/§7.
func TypeErrorf(rt *Runtime, verb string, v Value) {
	Raisef(rt, "attempt to %s a %s value", verb, TypeOf(v).String())
}

func (rt *Runtime) where(level int) string {
	fr := rt.currentFrame(level)
	if fr == nil {
		return ""
	}
	name := fr.closure.source()
	return fmt.Sprintf("%s:%d: ", name, fr.line)
}

func (c *Closure) source() string {
	if c == nil || c.Proto == nil || c.Proto.Proto == nil {
		return "?"
	}
	if c.Proto.Proto.Source != "" {
		return c.Proto.Proto.Source
	}
	return "?"
}
