// Package diag is the interpreter's ambient logging surface, grounded
// on the teacher's term/logger pair: colorized level-prefixed lines
// gated by a Debug flag, rather than a structured logging library (the
// examples pack carries none).
package diag

import (
	"fmt"
	"os"
)

const (
	red     = "\033[31m"
	yellow  = "\033[33m"
	cyan    = "\033[36m"
	nocolor = "\033[0m"
)

// Debug gates Info/Warn output the same way consts.Debug gated the
// teacher's logger.I/W; Err always prints since it signals a real fault.
var Debug = os.Getenv("LUA54_DEBUG") != ""

func printf(prefix, format string, args ...any) {
	fmt.Fprintf(os.Stderr, prefix+format+nocolor+"\n", args...)
}

func Info(format string, args ...any) {
	if Debug {
		printf(cyan+"[info] ", format, args...)
	}
}

func Warn(format string, args ...any) {
	if Debug {
		printf(yellow+"[warn] ", format, args...)
	}
}

func Err(format string, args ...any) {
	printf(red+"[error] ", format, args...)
}
