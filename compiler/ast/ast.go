// Package ast defines the Lua 5.4 abstract syntax tree produced by the
// parser. Every node kind mirrors a construct of the reference grammar;
// expressions and statements are plain Go structs behind the Exp/Stat
// marker interfaces so the tree-walking evaluator can switch on concrete
// type instead of an ambient "node kind" tag.
package ast

// Block is a sequence of statements optionally followed by a return.
type Block struct {
	Stats    []Stat
	ReturnExps []Exp // nil if the block has no explicit return
	ReturnLine int
}

type Stat interface{}

type (
	// local names[, attribs] = exps
	LocalStat struct {
		Line    int
		Names   []string
		Attribs []string // "" , "const", or "close" per name
		Exps    []Exp
		Slots   []int // filled in by the resolver, parallel to Names
	}

	// varlist = explist
	AssignStat struct {
		Line     int
		VarExps  []Exp
		ValExps  []Exp
	}

	// a single function/method call used as a statement
	CallStat struct {
		Exp Exp
	}

	DoStat struct {
		Block *Block
	}

	WhileStat struct {
		Cond  Exp
		Block *Block
	}

	RepeatStat struct {
		Block *Block
		Cond  Exp
	}

	IfStat struct {
		Conds  []Exp
		Blocks []*Block // len(Blocks) == len(Conds)+1 when there is an else clause
	}

	NumericForStat struct {
		Line     int
		VarName  string
		InitExp  Exp
		LimitExp Exp
		StepExp  Exp // nil if step omitted
		Block    *Block
		Slot     int // filled in by the resolver
	}

	GenericForStat struct {
		Line      int
		NameList  []string
		ExpList   []Exp
		Block     *Block
		Slots     []int // filled in by the resolver, parallel to NameList
	}

	FunctionDeclStat struct {
		// e.g. "function a.b.c:d(...) ... end" target
		Line      int
		IsLocal   bool
		IsMethod  bool
		NameParts []string // a, b, c
		LastName  string   // d (or the single name for a plain declaration)
		Fn        *FuncDefExp

		// filled in by the resolver: for IsLocal, the local's slot and
		// (for recursive calls) its own upvalue ref inside Fn; for a plain
		// declaration, how the head (NameParts[0], if any, else LastName)
		// resolves.
		Slot   int
		Target NameRef
	}

	ReturnStat struct {
		Line int
		Exps []Exp
	}

	BreakStat struct{ Line int }

	GotoStat struct {
		Line  int
		Label string
	}

	LabelStat struct {
		Line int
		Name string
	}
)

/* expressions */

type Exp interface{}

type (
	NilExp    struct{ Line int }
	TrueExp   struct{ Line int }
	FalseExp  struct{ Line int }
	VarargExp struct{ Line int }

	IntegerExp struct {
		Line int
		Int  int64
	}
	FloatExp struct {
		Line  int
		Float float64
	}
	StringExp struct {
		Line int
		Str  string
	}

	UnopExp struct {
		Line int
		Op   int
		Exp  Exp
	}

	BinopExp struct {
		Line  int
		Op    int
		Left  Exp
		Right Exp
	}

	// tableconstructor: array-style fields have a nil KeyExps entry
	TableConstructorExp struct {
		Line     int
		LastLine int
		KeyExps  []Exp // KeyExps[i] == nil means ValExps[i] is an array-style field
		ValExps  []Exp
	}

	FuncDefExp struct {
		Line     int
		LastLine int
		ParList  []string
		IsVararg bool
		Block    *Block

		// filled in by the resolver (see compiler/resolver)
		Proto *FuncProto
	}

	NameExp struct {
		Line int
		Name string

		// filled in by the resolver: exactly one of these applies
		Ref NameRef
	}

	ParensExp struct{ Exp Exp }

	TableAccessExp struct {
		Line      int
		LastLine  int
		PrefixExp Exp
		KeyExp    Exp
	}

	FuncCallExp struct {
		Line      int
		LastLine  int
		PrefixExp Exp
		MethodName string // non-empty for prefix:Name(args)
		Args      []Exp
	}
)

// NameRef records how the resolver resolved a NameExp: to a local slot in
// the current function, to an upvalue captured from an enclosing function,
// or (the default, zero value) to a global looked up in _ENV.
type NameRefKind int

const (
	RefGlobal NameRefKind = iota
	RefLocal
	RefUpval
)

type NameRef struct {
	Kind  NameRefKind
	Index int
}

// FuncProto is the per-function-body metadata the resolver attaches to a
// FuncDefExp: how many locals it needs and how its upvalues are sourced
// from the enclosing function (§3.4, §4.3).
type FuncProto struct {
	NumLocals  int
	Upvals     []UpvalDesc
	Source     string
	IsVararg   bool
}

// UpvalDesc is either (FromParentLocal=true, Index=parent's local slot) or
// (FromParentLocal=false, Index=parent's own upvalue index).
type UpvalDesc struct {
	Name            string
	FromParentLocal bool
	Index           int
}
