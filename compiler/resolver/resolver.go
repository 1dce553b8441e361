// Package resolver runs a second pass over the AST produced by
// compiler/parser: it assigns a local slot index to every declared local,
// resolves every free name to a local/upvalue/global reference, and
// validates goto/label scoping, per §4.3.
package resolver

import (
	"fmt"

	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
)

// Error is a compile-time scoping error (undefined label, illegal goto).
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Line, e.Msg) }

func errorf(line int, format string, a ...any) {
	panic(&Error{Line: line, Msg: fmt.Sprintf(format, a...)})
}

// Resolve walks a parsed chunk in place, annotating NameExp.Ref,
// FuncDefExp.Proto, and the Slots/Slot fields of local-declaring
// statements. It returns the FuncProto for the implicit main-chunk
// function, which is always vararg (§6.1's `arg`/`...` at chunk scope).
func Resolve(chunkName string, block *ast.Block) *ast.FuncProto {
	r := &resolver{}
	fs := r.pushFunc(nil, true)
	fs.proto.IsVararg = true
	fs.proto.Source = chunkName
	r.resolveBlock(fs, block, -1)
	r.popFunc(fs, block)
	return fs.proto
}

type localVar struct {
	slot int
}

type blockScope struct {
	parent       *blockScope
	names        map[string]int // name -> slot, innermost wins
	labels       map[string]int // label name -> stat index in this block
	pendingGotos []pendingGoto
}

type pendingGoto struct {
	name      string
	line      int
	statIndex int // index in the block where it originated, -1 if bubbled from a child
}

type funcState struct {
	parent      *funcState
	proto       *ast.FuncProto
	numLocals   int
	upvalIndex  map[string]int
	block       *blockScope
	isMain      bool
}

type resolver struct{}

func (r *resolver) pushFunc(parent *funcState, isMain bool) *funcState {
	return &funcState{
		parent:     parent,
		proto:      &ast.FuncProto{},
		upvalIndex: map[string]int{},
		isMain:     isMain,
	}
}

func (r *resolver) popFunc(fs *funcState, _ *ast.Block) {
	fs.proto.NumLocals = fs.numLocals
}

func (r *resolver) declareLocal(fs *funcState, name string) int {
	slot := fs.numLocals
	fs.numLocals++
	fs.block.names[name] = slot
	return slot
}

func (r *resolver) pushBlock(fs *funcState) *blockScope {
	b := &blockScope{parent: fs.block, names: map[string]int{}, labels: map[string]int{}}
	fs.block = b
	return b
}

// popBlock resolves this block's pending gotos against its own labels,
// then bubbles the rest to the parent block (or errors if there is none).
// enclosingIndex is the index, within the parent block's own statement
// list, of the statement that owns this block (the do/while/if/for stat
// that this block is the body of) - a bubbled goto still has to be
// checked for crossing a local declared later in that outer block.
func (r *resolver) popBlock(fs *funcState, b *blockScope, stats []ast.Stat, enclosingIndex int) {
	fs.block = b.parent
	for _, g := range b.pendingGotos {
		if labelIdx, ok := b.labels[g.name]; ok {
			if g.statIndex >= 0 && labelIdx > g.statIndex {
				checkNoLocalCrossing(stats, g.statIndex, labelIdx, g.line)
			}
			continue
		}
		if b.parent == nil {
			errorf(g.line, "Undefined label: %s", g.name)
		}
		b.parent.pendingGotos = append(b.parent.pendingGotos, pendingGoto{name: g.name, line: g.line, statIndex: enclosingIndex})
	}
}

// checkNoLocalCrossing rejects a forward goto that would skip over a new
// local declaration still in scope at the label.
func checkNoLocalCrossing(stats []ast.Stat, from, to int, line int) {
	for i := from; i < to && i < len(stats); i++ {
		switch stats[i].(type) {
		case *ast.LocalStat:
			errorf(line, "goto crosses local variable declaration")
		case *ast.FunctionDeclStat:
			if fd := stats[i].(*ast.FunctionDeclStat); fd.IsLocal {
				errorf(line, "goto crosses local variable declaration")
			}
		}
	}
}

func (r *resolver) resolveBlock(fs *funcState, block *ast.Block, enclosingIndex int) {
	b := r.pushBlock(fs)
	for i, stat := range block.Stats {
		r.resolveStat(fs, stat, i)
	}
	for _, e := range block.ReturnExps {
		r.resolveExp(fs, e)
	}
	r.popBlock(fs, b, block.Stats, enclosingIndex)
}

func (r *resolver) resolveStat(fs *funcState, stat ast.Stat, index int) {
	switch s := stat.(type) {
	case *ast.LocalStat:
		for _, e := range s.Exps {
			r.resolveExp(fs, e)
		}
		s.Slots = make([]int, len(s.Names))
		for i, name := range s.Names {
			s.Slots[i] = r.declareLocal(fs, name)
		}
	case *ast.AssignStat:
		for _, e := range s.ValExps {
			r.resolveExp(fs, e)
		}
		for _, e := range s.VarExps {
			r.resolveExp(fs, e)
		}
	case *ast.CallStat:
		r.resolveExp(fs, s.Exp)
	case *ast.DoStat:
		r.resolveBlock(fs, s.Block, index)
	case *ast.WhileStat:
		r.resolveExp(fs, s.Cond)
		r.resolveBlock(fs, s.Block, index)
	case *ast.RepeatStat:
		// until's condition can see the body's locals, so resolve it as
		// part of the same block rather than after popping the scope.
		b := r.pushBlock(fs)
		for i, st := range s.Block.Stats {
			r.resolveStat(fs, st, i)
		}
		for _, e := range s.Block.ReturnExps {
			r.resolveExp(fs, e)
		}
		r.resolveExp(fs, s.Cond)
		r.popBlock(fs, b, s.Block.Stats, index)
	case *ast.IfStat:
		for _, c := range s.Conds {
			r.resolveExp(fs, c)
		}
		for _, blk := range s.Blocks {
			r.resolveBlock(fs, blk, index)
		}
	case *ast.NumericForStat:
		r.resolveExp(fs, s.InitExp)
		r.resolveExp(fs, s.LimitExp)
		if s.StepExp != nil {
			r.resolveExp(fs, s.StepExp)
		}
		b := r.pushBlock(fs)
		s.Slot = r.declareLocal(fs, s.VarName)
		for i, st := range s.Block.Stats {
			r.resolveStat(fs, st, i)
		}
		for _, e := range s.Block.ReturnExps {
			r.resolveExp(fs, e)
		}
		r.popBlock(fs, b, s.Block.Stats, index)
	case *ast.GenericForStat:
		for _, e := range s.ExpList {
			r.resolveExp(fs, e)
		}
		b := r.pushBlock(fs)
		s.Slots = make([]int, len(s.NameList))
		for i, name := range s.NameList {
			s.Slots[i] = r.declareLocal(fs, name)
		}
		for i, st := range s.Block.Stats {
			r.resolveStat(fs, st, i)
		}
		for _, e := range s.Block.ReturnExps {
			r.resolveExp(fs, e)
		}
		r.popBlock(fs, b, s.Block.Stats, index)
	case *ast.FunctionDeclStat:
		if s.IsLocal {
			s.Slot = r.declareLocal(fs, s.LastName)
			r.resolveFuncDef(fs, s.Fn)
			return
		}
		head := s.LastName
		if len(s.NameParts) > 0 {
			head = s.NameParts[0]
		}
		s.Target = r.resolveName(fs, head)
		r.resolveFuncDef(fs, s.Fn)
	case *ast.ReturnStat:
		for _, e := range s.Exps {
			r.resolveExp(fs, e)
		}
	case *ast.BreakStat, *ast.LabelStat:
		if l, ok := stat.(*ast.LabelStat); ok {
			fs.block.labels[l.Name] = index
		}
	case *ast.GotoStat:
		fs.block.pendingGotos = append(fs.block.pendingGotos, pendingGoto{name: s.Label, line: s.Line, statIndex: index})
	}
}

func (r *resolver) resolveFuncDef(fs *funcState, fn *ast.FuncDefExp) {
	child := r.pushFunc(fs, false)
	child.proto.IsVararg = fn.IsVararg
	child.proto.Source = fs.proto.Source
	b := r.pushBlock(child)
	for _, name := range fn.ParList {
		r.declareLocal(child, name)
	}
	for i, st := range fn.Block.Stats {
		r.resolveStat(child, st, i)
	}
	for _, e := range fn.Block.ReturnExps {
		r.resolveExp(child, e)
	}
	r.popBlock(child, b, fn.Block.Stats, -1)
	r.popFunc(child, fn.Block)
	fn.Proto = child.proto
}

func (r *resolver) resolveExp(fs *funcState, exp ast.Exp) {
	switch e := exp.(type) {
	case *ast.NameExp:
		e.Ref = r.resolveName(fs, e.Name)
	case *ast.UnopExp:
		r.resolveExp(fs, e.Exp)
	case *ast.BinopExp:
		r.resolveExp(fs, e.Left)
		r.resolveExp(fs, e.Right)
	case *ast.TableConstructorExp:
		for _, k := range e.KeyExps {
			if k != nil {
				r.resolveExp(fs, k)
			}
		}
		for _, v := range e.ValExps {
			r.resolveExp(fs, v)
		}
	case *ast.FuncDefExp:
		r.resolveFuncDef(fs, e)
	case *ast.ParensExp:
		r.resolveExp(fs, e.Exp)
	case *ast.TableAccessExp:
		r.resolveExp(fs, e.PrefixExp)
		r.resolveExp(fs, e.KeyExp)
	case *ast.FuncCallExp:
		r.resolveExp(fs, e.PrefixExp)
		for _, a := range e.Args {
			r.resolveExp(fs, a)
		}
	}
}

// resolveName implements the capture chain of §4.3: local in this
// function, else an upvalue recursively captured from an enclosing
// function, else a global.
func (r *resolver) resolveName(fs *funcState, name string) ast.NameRef {
	if slot, ok := lookupLocal(fs.block, name); ok {
		return ast.NameRef{Kind: ast.RefLocal, Index: slot}
	}
	if idx, ok := fs.upvalIndex[name]; ok {
		return ast.NameRef{Kind: ast.RefUpval, Index: idx}
	}
	if fs.parent == nil {
		return ast.NameRef{Kind: ast.RefGlobal}
	}
	parentRef := r.resolveName(fs.parent, name)
	switch parentRef.Kind {
	case ast.RefLocal:
		idx := len(fs.proto.Upvals)
		fs.proto.Upvals = append(fs.proto.Upvals, ast.UpvalDesc{Name: name, FromParentLocal: true, Index: parentRef.Index})
		fs.upvalIndex[name] = idx
		return ast.NameRef{Kind: ast.RefUpval, Index: idx}
	case ast.RefUpval:
		idx := len(fs.proto.Upvals)
		fs.proto.Upvals = append(fs.proto.Upvals, ast.UpvalDesc{Name: name, FromParentLocal: false, Index: parentRef.Index})
		fs.upvalIndex[name] = idx
		return ast.NameRef{Kind: ast.RefUpval, Index: idx}
	default:
		return ast.NameRef{Kind: ast.RefGlobal}
	}
}

func lookupLocal(b *blockScope, name string) (int, bool) {
	for s := b; s != nil; s = s.parent {
		if slot, ok := s.names[name]; ok {
			return slot, true
		}
	}
	return 0, false
}
