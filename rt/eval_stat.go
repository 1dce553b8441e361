package rt

import (
	"fmt"

	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
)

// execBlock runs a block's statements, returning the first non-ctrlNone
// signal any of them (or the block's own explicit return) produces. Any
// <close> locals declared directly in this block are closed, in reverse
// declaration order, no matter how the block is left — normally, via
// break/return/goto, or via a panicking error — mirroring §4.6.
func execBlock(rt *Runtime, fr *Frame, block *ast.Block) (result ctrl) {
	var toClose []Value

	defer func() {
		if len(toClose) == 0 {
			return
		}
		r := recover()
		var errVal Value
		hasErr := false
		if r != nil {
			hasErr = true
			if le, ok := r.(*LuaError); ok {
				errVal = le.Value
			} else {
				errVal = fmt.Sprintf("%v", r)
			}
		}
		for i := len(toClose) - 1; i >= 0; i-- {
			v := toClose[i]
			if v == nil {
				continue
			}
			if h := metamethod(rt, v, "__close"); h != nil {
				if _, cerr := Call(rt, h, []Value{v, errVal}); cerr != nil {
					panic(cerr)
				}
			}
		}
		if hasErr {
			panic(r)
		}
	}()

	i := 0
	for i < len(block.Stats) {
		c := execStat(rt, fr, block.Stats[i], &toClose)
		if c.kind == ctrlGoto {
			if target, ok := findLabel(block.Stats, c.label); ok {
				i = target
				continue
			}
			return c
		}
		if c.kind != ctrlNone {
			return c
		}
		i++
	}
	if block.ReturnLine != 0 {
		fr.line = block.ReturnLine
		return ctrlReturnValues(evalExpList(rt, fr, block.ReturnExps))
	}
	return ctrlFallthrough
}

func findLabel(stats []ast.Stat, name string) (int, bool) {
	for i, st := range stats {
		if l, ok := st.(*ast.LabelStat); ok && l.Name == name {
			return i, true
		}
	}
	return 0, false
}

func execStat(rt *Runtime, fr *Frame, stat ast.Stat, toClose *[]Value) ctrl {
	switch s := stat.(type) {
	case *ast.LocalStat:
		return execLocalStat(rt, fr, s, toClose)
	case *ast.AssignStat:
		return execAssignStat(rt, fr, s)
	case *ast.CallStat:
		fr.line = callStatLine(s)
		evalFuncCall(rt, fr, s.Exp.(*ast.FuncCallExp))
		return ctrlFallthrough
	case *ast.DoStat:
		return execBlock(rt, fr, s.Block)
	case *ast.WhileStat:
		return execWhileStat(rt, fr, s)
	case *ast.RepeatStat:
		return execRepeatStat(rt, fr, s)
	case *ast.IfStat:
		return execIfStat(rt, fr, s)
	case *ast.NumericForStat:
		return execNumericForStat(rt, fr, s)
	case *ast.GenericForStat:
		return execGenericForStat(rt, fr, s)
	case *ast.FunctionDeclStat:
		return execFunctionDeclStat(rt, fr, s)
	case *ast.BreakStat:
		return ctrlBreakSignal
	case *ast.GotoStat:
		return ctrlGotoLabel(s.Label)
	case *ast.LabelStat:
		return ctrlFallthrough
	}
	Raisef(rt, "internal error: unhandled statement type")
	return ctrlFallthrough
}

func callStatLine(s *ast.CallStat) int {
	if fc, ok := s.Exp.(*ast.FuncCallExp); ok {
		return fc.Line
	}
	return 0
}

func execLocalStat(rt *Runtime, fr *Frame, s *ast.LocalStat, toClose *[]Value) ctrl {
	vals := evalExpList(rt, fr, s.Exps)
	for i, slot := range s.Slots {
		var v Value
		if i < len(vals) {
			v = vals[i]
		}
		fr.locals[slot] = v
		if s.Attribs[i] == "close" {
			if v != nil && metamethod(rt, v, "__close") == nil {
				Raisef(rt, "variable '%s' got a non-closable value", s.Names[i])
			}
			*toClose = append(*toClose, v)
		}
	}
	return ctrlFallthrough
}

func execAssignStat(rt *Runtime, fr *Frame, s *ast.AssignStat) ctrl {
	vals := evalExpList(rt, fr, s.ValExps)
	for i, target := range s.VarExps {
		var v Value
		if i < len(vals) {
			v = vals[i]
		}
		assignTo(rt, fr, target, v)
	}
	return ctrlFallthrough
}

func assignTo(rt *Runtime, fr *Frame, target ast.Exp, v Value) {
	switch t := target.(type) {
	case *ast.NameExp:
		assignName(rt, fr, t, v)
	case *ast.TableAccessExp:
		fr.line = t.Line
		obj := evalExp(rt, fr, t.PrefixExp)
		key := evalExp(rt, fr, t.KeyExp)
		NewIndex(rt, obj, key, v)
	default:
		Raisef(rt, "internal error: invalid assignment target")
	}
}

func execWhileStat(rt *Runtime, fr *Frame, s *ast.WhileStat) ctrl {
	for Truthy(evalExp(rt, fr, s.Cond)) {
		c := execBlock(rt, fr, s.Block)
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough
		case ctrlReturn, ctrlGoto:
			return c
		}
	}
	return ctrlFallthrough
}

func execRepeatStat(rt *Runtime, fr *Frame, s *ast.RepeatStat) ctrl {
	for {
		c := execBlock(rt, fr, s.Block)
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough
		case ctrlReturn, ctrlGoto:
			return c
		}
		// the until-condition is evaluated in the scope of the body's own
		// locals, per §2: safe here because Slots were assigned into the
		// shared frame, not a sub-scope.
		if Truthy(evalExp(rt, fr, s.Cond)) {
			return ctrlFallthrough
		}
	}
}

func execIfStat(rt *Runtime, fr *Frame, s *ast.IfStat) ctrl {
	for i, cond := range s.Conds {
		if Truthy(evalExp(rt, fr, cond)) {
			return execBlock(rt, fr, s.Blocks[i])
		}
	}
	if len(s.Blocks) > len(s.Conds) {
		return execBlock(rt, fr, s.Blocks[len(s.Conds)])
	}
	return ctrlFallthrough
}

func execNumericForStat(rt *Runtime, fr *Frame, s *ast.NumericForStat) ctrl {
	init := forNumber(rt, evalExp(rt, fr, s.InitExp), "initial")
	limit := forNumber(rt, evalExp(rt, fr, s.LimitExp), "limit")
	var step Value = int64(1)
	if s.StepExp != nil {
		step = forNumber(rt, evalExp(rt, fr, s.StepExp), "step")
	}

	if ii, iok := init.(int64); iok {
		if si, sok := step.(int64); sok {
			if si == 0 {
				Raisef(rt, "'for' step is zero")
			}
			lf, _ := ToFloat(limit)
			return execIntFor(rt, fr, s, ii, si, limit, lf)
		}
	}

	initF, _ := ToFloat(init)
	limitF, _ := ToFloat(limit)
	stepF, _ := ToFloat(step)
	if stepF == 0 {
		Raisef(rt, "'for' step is zero")
	}
	return execFloatFor(rt, fr, s, initF, limitF, stepF)
}

func forNumber(rt *Runtime, v Value, which string) Value {
	switch v.(type) {
	case int64, float64:
		return v
	}
	if s, ok := v.(string); ok {
		if n, ok := stringToInteger(s); ok {
			return n
		}
		if f, ok := ParseFloatString(s); ok {
			return f
		}
	}
	Raisef(rt, "'for' %s value must be a number", which)
	return nil
}

func execIntFor(rt *Runtime, fr *Frame, s *ast.NumericForStat, i, step int64, limit Value, limitF float64) ctrl {
	li, isInt := limit.(int64)
	for {
		if isInt {
			if step > 0 && i > li {
				break
			}
			if step < 0 && i < li {
				break
			}
		} else {
			fi := float64(i)
			if step > 0 && fi > limitF {
				break
			}
			if step < 0 && fi < limitF {
				break
			}
		}
		fr.locals[s.Slot] = i
		c := execBlock(rt, fr, s.Block)
		fr.closeUpvaluesFrom(s.Slot)
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough
		case ctrlReturn, ctrlGoto:
			return c
		}
		next := i + step
		if step > 0 && next < i {
			break // overflow
		}
		if step < 0 && next > i {
			break // underflow
		}
		i = next
	}
	return ctrlFallthrough
}

func execFloatFor(rt *Runtime, fr *Frame, s *ast.NumericForStat, i, limit, step float64) ctrl {
	for {
		if step > 0 && i > limit {
			break
		}
		if step < 0 && i < limit {
			break
		}
		fr.locals[s.Slot] = i
		c := execBlock(rt, fr, s.Block)
		fr.closeUpvaluesFrom(s.Slot)
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough
		case ctrlReturn, ctrlGoto:
			return c
		}
		i += step
	}
	return ctrlFallthrough
}

func execGenericForStat(rt *Runtime, fr *Frame, s *ast.GenericForStat) ctrl {
	vals := evalExpList(rt, fr, s.ExpList)
	iterFn := get(vals, 0)
	state := get(vals, 1)
	control := get(vals, 2)
	// vals[3], if present, is the closing value of §4.6. It is evaluated
	// but not used: its __close metamethod is not called when the loop ends.

	for {
		res, err := Call(rt, iterFn, []Value{state, control})
		if err != nil {
			panic(err)
		}
		if len(res) == 0 || res[0] == nil {
			return ctrlFallthrough
		}
		control = res[0]
		for i, slot := range s.Slots {
			var v Value
			if i < len(res) {
				v = res[i]
			}
			fr.locals[slot] = v
		}
		c := execBlock(rt, fr, s.Block)
		if len(s.Slots) > 0 {
			fr.closeUpvaluesFrom(s.Slots[0])
		}
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough
		case ctrlReturn, ctrlGoto:
			return c
		}
	}
}

func get(vs []Value, i int) Value {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}

func execFunctionDeclStat(rt *Runtime, fr *Frame, s *ast.FunctionDeclStat) ctrl {
	if s.IsLocal {
		// the local is declared (and visible to the function body for
		// recursive calls) before the closure is built, per §2.
		fr.locals[s.Slot] = nil
		c := makeClosure(rt, fr, s.Fn)
		c.Name = s.LastName
		fr.locals[s.Slot] = c
		return ctrlFallthrough
	}

	c := makeClosure(rt, fr, s.Fn)
	c.Name = s.LastName
	if len(s.NameParts) == 0 {
		assignTarget(rt, fr, s.Target, s.LastName, c)
		return ctrlFallthrough
	}

	obj := resolveTargetValue(rt, fr, s.Target, s.NameParts[0])
	for _, part := range s.NameParts[1:] {
		obj = Index(rt, obj, part)
	}
	NewIndex(rt, obj, s.LastName, c)
	return ctrlFallthrough
}

func assignTarget(rt *Runtime, fr *Frame, ref ast.NameRef, name string, v Value) {
	switch ref.Kind {
	case ast.RefLocal:
		fr.locals[ref.Index] = v
	case ast.RefUpval:
		fr.closure.Upvals[ref.Index].Set(v)
	default:
		_ = rt.Globals.Set(name, v)
	}
}

func resolveTargetValue(rt *Runtime, fr *Frame, ref ast.NameRef, headName string) Value {
	switch ref.Kind {
	case ast.RefLocal:
		return fr.locals[ref.Index]
	case ast.RefUpval:
		return fr.closure.Upvals[ref.Index].Get()
	default:
		return rt.Globals.Get(headName)
	}
}
