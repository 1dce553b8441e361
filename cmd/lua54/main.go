// Command lua54 is the reference CLI driver: it wires rt.NewRuntime,
// stdlib.OpenAll and rt.RunMain together the way the teacher's main.go
// wired state.New/OpenLibs/Load/Call, minus the bytecode-cache step a
// tree-walking interpreter has no use for.
package main

import (
	"flag"
	"fmt"
	"os"

	"git.lolli.tech/lollipopkit/lua54/internal/diag"
	"git.lolli.tech/lollipopkit/lua54/rt"
	"git.lolli.tech/lollipopkit/lua54/stdlib"
)

const version = "lua54 5.4"

func main() {
	var (
		exprs    stringList
		requires stringList
		interact bool
		showVer  bool
		dumpAST  string
	)
	flag.Var(&exprs, "e", "execute string 'stat'")
	flag.Var(&requires, "l", "require library 'name' before running script")
	flag.BoolVar(&interact, "i", false, "enter interactive mode after running script")
	flag.BoolVar(&showVer, "v", false, "show version information")
	flag.StringVar(&dumpAST, "dump-ast", "", "write path.ast.json for the given script and exit")
	flag.Parse()

	if showVer {
		fmt.Println(version)
		if len(exprs) == 0 && flag.NArg() == 0 {
			return
		}
	}

	if dumpAST != "" {
		if err := writeAST(dumpAST); err != nil {
			diag.Err("%s", err.Error())
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	scriptPath := ""
	var scriptArgs []string
	if len(args) > 0 {
		scriptPath = args[0]
		scriptArgs = args[1:]
	}

	r := rt.NewRuntime()
	stdlib.OpenAll(r)
	setArgTable(r, scriptPath, scriptArgs)

	for _, name := range requires {
		if _, err := rt.Call(r, r.Globals.Get("require"), []rt.Value{name}); err != nil {
			reportAndExit(err)
		}
	}

	ranAny := false
	for _, stat := range exprs {
		if _, err := rt.RunMain(r, []byte(stat), "=(command line)", nil); err != nil {
			reportAndExit(err)
		}
		ranAny = true
	}

	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			diag.Err("cannot open %s", scriptPath)
			os.Exit(1)
		}
		chunkArgs := make([]rt.Value, len(scriptArgs))
		for i, a := range scriptArgs {
			chunkArgs[i] = a
		}
		if _, err := rt.RunMain(r, data, "@"+scriptPath, chunkArgs); err != nil {
			reportAndExit(err)
		}
		ranAny = true
	}

	if interact || (!ranAny && scriptPath == "") {
		runREPL(r)
	}
}

func reportAndExit(err error) {
	diag.Err("%s", err.Error())
	os.Exit(1)
}

func setArgTable(r *rt.Runtime, script string, scriptArgs []string) {
	t := rt.NewTable()
	if script != "" {
		_ = t.Set(int64(0), script)
	}
	for i, a := range scriptArgs {
		_ = t.Set(int64(i+1), a)
	}
	_ = r.Globals.Set("arg", t)
}

// stringList accumulates repeatable -e/-l flags in encounter order.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
