package rt

import (
	"fmt"

	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
	"git.lolli.tech/lollipopkit/lua54/compiler/parser"
	"git.lolli.tech/lollipopkit/lua54/compiler/resolver"
)

// Load compiles a chunk of source into a callable main-chunk Closure
// (§6.1's implicit vararg function wrapping every chunk), recovering the
// lexer/parser/resolver's panics into a plain Go error.
func Load(chunk []byte, chunkName string) (c *Closure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = loadError(chunkName, r)
		}
	}()

	block := parser.Parse(string(chunk), chunkName)
	proto := resolver.Resolve(chunkName, block)

	def := &ast.FuncDefExp{
		ParList:  nil,
		IsVararg: true,
		Block:    block,
		Proto:    proto,
	}
	return &Closure{Proto: def, Name: "main chunk"}, nil
}

func loadError(chunkName string, r any) error {
	switch e := r.(type) {
	case *lexer.SyntaxError:
		return fmt.Errorf("%s:%d: %s", e.Chunk, e.Line, e.Msg)
	case *resolver.Error:
		return fmt.Errorf("%s:%d: %s", chunkName, e.Line, e.Msg)
	case error:
		return e
	default:
		return fmt.Errorf("%v", r)
	}
}

// RunMain loads and calls a chunk as the main program, with args exposed
// as its varargs (§6.1).
func RunMain(rt *Runtime, chunk []byte, chunkName string, args []Value) ([]Value, error) {
	c, err := Load(chunk, chunkName)
	if err != nil {
		return nil, err
	}
	return Call(rt, c, args)
}
