package rt

import (
	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

// evalExp evaluates an expression to a single value, truncating a
// multi-value producer (call, vararg) to its first result per §3.4.
func evalExp(rt *Runtime, fr *Frame, exp ast.Exp) Value {
	switch e := exp.(type) {
	case *ast.FuncCallExp:
		return first(evalFuncCall(rt, fr, e))
	case *ast.VarargExp:
		if len(fr.varargs) == 0 {
			return nil
		}
		return fr.varargs[0]
	default:
		return evalExpSingle(rt, fr, exp)
	}
}

// evalExpSingle handles every expression kind that is inherently
// single-valued (everything but calls and `...`).
func evalExpSingle(rt *Runtime, fr *Frame, exp ast.Exp) Value {
	switch e := exp.(type) {
	case *ast.NilExp:
		return nil
	case *ast.TrueExp:
		return true
	case *ast.FalseExp:
		return false
	case *ast.IntegerExp:
		return e.Int
	case *ast.FloatExp:
		return e.Float
	case *ast.StringExp:
		return e.Str
	case *ast.ParensExp:
		return evalExp(rt, fr, e.Exp)
	case *ast.NameExp:
		return evalName(rt, fr, e)
	case *ast.UnopExp:
		return evalUnop(rt, fr, e)
	case *ast.BinopExp:
		return evalBinop(rt, fr, e)
	case *ast.TableConstructorExp:
		return evalTableConstructor(rt, fr, e)
	case *ast.FuncDefExp:
		return makeClosure(rt, fr, e)
	case *ast.TableAccessExp:
		fr.line = e.Line
		obj := evalExp(rt, fr, e.PrefixExp)
		key := evalExp(rt, fr, e.KeyExp)
		return Index(rt, obj, key)
	}
	Raisef(rt, "internal error: unhandled expression type")
	return nil
}

func evalName(rt *Runtime, fr *Frame, e *ast.NameExp) Value {
	switch e.Ref.Kind {
	case ast.RefLocal:
		return fr.locals[e.Ref.Index]
	case ast.RefUpval:
		return fr.closure.Upvals[e.Ref.Index].Get()
	default:
		return rt.Globals.Get(e.Name)
	}
}

func assignName(rt *Runtime, fr *Frame, e *ast.NameExp, v Value) {
	switch e.Ref.Kind {
	case ast.RefLocal:
		fr.locals[e.Ref.Index] = v
	case ast.RefUpval:
		fr.closure.Upvals[e.Ref.Index].Set(v)
	default:
		_ = rt.Globals.Set(e.Name, v)
	}
}

func makeClosure(rt *Runtime, fr *Frame, def *ast.FuncDefExp) *Closure {
	c := &Closure{Proto: def}
	if len(def.Proto.Upvals) > 0 {
		c.Upvals = make([]*Upvalue, len(def.Proto.Upvals))
		for i, ud := range def.Proto.Upvals {
			if ud.FromParentLocal {
				c.Upvals[i] = fr.upvalueFor(ud.Index)
			} else {
				c.Upvals[i] = fr.closure.Upvals[ud.Index]
			}
		}
	}
	return c
}

func evalUnop(rt *Runtime, fr *Frame, e *ast.UnopExp) Value {
	fr.line = e.Line
	if e.Op == lexer.TOKEN_OP_NOT {
		return !Truthy(evalExp(rt, fr, e.Exp))
	}
	v := coerceArithOperand(evalExp(rt, fr, e.Exp))
	switch e.Op {
	case lexer.TOKEN_OP_UNM:
		if r, ok := arithUnm(v); ok {
			return r
		}
		if r, ok := unMeta(rt, "__unm", v); ok {
			return r
		}
		TypeErrorf(rt, "perform arithmetic on", v)
	case lexer.TOKEN_OP_BNOT:
		if r, ok := arithBNot(v); ok {
			return r
		}
		if r, ok := unMeta(rt, "__bnot", v); ok {
			return r
		}
		if MathType(v) == "float" {
			Raisef(rt, "number has no integer representation")
		}
		TypeErrorf(rt, "perform bitwise operation on", v)
	case lexer.TOKEN_OP_LEN:
		return Len(rt, evalExp(rt, fr, e.Exp))
	}
	Raisef(rt, "internal error: unhandled unary operator")
	return nil
}

func evalBinop(rt *Runtime, fr *Frame, e *ast.BinopExp) Value {
	if e.Op == lexer.TOKEN_OP_AND {
		l := evalExp(rt, fr, e.Left)
		if !Truthy(l) {
			return l
		}
		return evalExp(rt, fr, e.Right)
	}
	if e.Op == lexer.TOKEN_OP_OR {
		l := evalExp(rt, fr, e.Left)
		if Truthy(l) {
			return l
		}
		return evalExp(rt, fr, e.Right)
	}

	l := evalExp(rt, fr, e.Left)
	r := evalExp(rt, fr, e.Right)
	fr.line = e.Line

	switch e.Op {
	case lexer.TOKEN_OP_EQ:
		return Eq(rt, l, r)
	case lexer.TOKEN_OP_NE:
		return !Eq(rt, l, r)
	case lexer.TOKEN_OP_LT:
		return Lt(rt, l, r)
	case lexer.TOKEN_OP_LE:
		return Le(rt, l, r)
	case lexer.TOKEN_OP_GT:
		return Lt(rt, r, l)
	case lexer.TOKEN_OP_GE:
		return Le(rt, r, l)
	case lexer.TOKEN_SEP_DOTS2:
		return Concat(rt, l, r)
	}

	ca, cb := coerceArithOperand(l), coerceArithOperand(r)
	switch e.Op {
	case lexer.TOKEN_OP_ADD:
		if v, ok := arithAdd(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__add", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_SUB:
		if v, ok := arithSub(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__sub", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_MUL:
		if v, ok := arithMul(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__mul", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_DIV:
		if v, ok := arithDiv(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__div", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_IDIV:
		if v, ok := arithIDiv(rt, ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__idiv", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_MOD:
		if v, ok := arithMod(rt, ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__mod", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_POW:
		if v, ok := arithPow(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__pow", "perform arithmetic on", l, r, ca, cb)
	case lexer.TOKEN_OP_BAND:
		if v, ok := arithBAnd(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__band", "perform bitwise operation on", l, r, ca, cb)
	case lexer.TOKEN_OP_BOR:
		if v, ok := arithBOr(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__bor", "perform bitwise operation on", l, r, ca, cb)
	case lexer.TOKEN_OP_BXOR:
		if v, ok := arithBXor(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__bxor", "perform bitwise operation on", l, r, ca, cb)
	case lexer.TOKEN_OP_SHL:
		if v, ok := arithShl(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__shl", "perform bitwise operation on", l, r, ca, cb)
	case lexer.TOKEN_OP_SHR:
		if v, ok := arithShr(ca, cb); ok {
			return v
		}
		return arithMetaOrError(rt, "__shr", "perform bitwise operation on", l, r, ca, cb)
	}
	Raisef(rt, "internal error: unhandled binary operator")
	return nil
}

func arithMetaOrError(rt *Runtime, event, verb string, l, r, cl, cr Value) Value {
	if v, ok := binMeta(rt, event, l, r); ok {
		return v
	}
	if verb == "perform bitwise operation on" && MathType(cl) != "" && MathType(cr) != "" {
		Raisef(rt, "number has no integer representation")
	}
	bad := l
	if _, ok := cl.(int64); ok {
		bad = r
	} else if _, ok := cl.(float64); ok {
		bad = r
	}
	TypeErrorf(rt, verb, bad)
	return nil
}

func evalTableConstructor(rt *Runtime, fr *Frame, e *ast.TableConstructorExp) *Table {
	t := NewTableSize(len(e.ValExps), 0)
	arrIdx := int64(1)
	n := len(e.ValExps)
	for i := 0; i < n; i++ {
		if e.KeyExps[i] != nil {
			k := evalExp(rt, fr, e.KeyExps[i])
			v := evalExp(rt, fr, e.ValExps[i])
			if err := t.Set(k, v); err != nil {
				Raisef(rt, "%s", err.Error())
			}
			continue
		}
		if i == n-1 {
			for _, v := range evalMulti(rt, fr, e.ValExps[i]) {
				_ = t.Set(arrIdx, v)
				arrIdx++
			}
			continue
		}
		v := evalExp(rt, fr, e.ValExps[i])
		_ = t.Set(arrIdx, v)
		arrIdx++
	}
	return t
}

// evalMulti evaluates an expression in a context where all of its results
// matter: a call or `...` expands fully, everything else yields exactly
// one value (§3.4).
func evalMulti(rt *Runtime, fr *Frame, exp ast.Exp) []Value {
	switch e := exp.(type) {
	case *ast.FuncCallExp:
		return evalFuncCall(rt, fr, e)
	case *ast.VarargExp:
		return fr.varargs
	default:
		return []Value{evalExpSingle(rt, fr, exp)}
	}
}

// evalExpList applies the "only the last expression expands" adjustment
// rule used by assignment lists, return statements, call arguments, and
// table constructors (§3.4).
func evalExpList(rt *Runtime, fr *Frame, exps []ast.Exp) []Value {
	if len(exps) == 0 {
		return nil
	}
	vals := make([]Value, 0, len(exps))
	for i, e := range exps {
		if i == len(exps)-1 {
			vals = append(vals, evalMulti(rt, fr, e)...)
		} else {
			vals = append(vals, evalExp(rt, fr, e))
		}
	}
	return vals
}

func evalFuncCall(rt *Runtime, fr *Frame, e *ast.FuncCallExp) []Value {
	fr.line = e.Line
	fn := evalExp(rt, fr, e.PrefixExp)
	var args []Value
	if e.MethodName != "" {
		self := fn
		fn = Index(rt, self, e.MethodName)
		args = append(args, self)
	}
	args = append(args, evalExpList(rt, fr, e.Args)...)
	res, err := Call(rt, fn, args)
	if err != nil {
		panic(err)
	}
	return res
}
