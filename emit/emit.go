// Package emit translates a linear ir.Result into the final machine-word
// vector: it selects opcodes, resolves the two global address namespaces
// (the data section for variables, the symbol section for named code
// blocks), and wraps the body in a fixed setup prologue and cleanup
// epilogue. Emit is the package's entry point.
package emit

import (
	"strconv"

	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/internal/invariant"
	"github.com/pengowen123/blocks/ir"
	"github.com/pengowen123/blocks/lexer"
)

// Opcode numbers for the prologue-prepending machine-word encoding: the
// 10/11/13 register-op family and the 16..=28 arithmetic family. A second,
// no-prologue encoding (6/7/8 and 9..=21) also appears in
// original_source/src/compile.rs; DESIGN.md records why this one was
// chosen instead.
const (
	opWrite      = 0
	opCopy       = 1
	opIndirWrite = 2
	opIndirCopy  = 3
	opIndirCopy3 = 5

	opRegWrite = 10
	opRegCopy  = 11
	opRegMem   = 13

	opAdd          = 16
	opSub          = 17
	opMul          = 18
	opDiv          = 19
	opEquals       = 20
	opLess         = 21
	opGreater      = 22
	opLessEqual    = 23
	opGreaterEqual = 24
	opOr           = 25
	opAnd          = 26
	opNot          = 27
	opXor          = 28

	opBranch      = 29
	opCondBranch  = 30
	opIndirBranch = 32
	opCall        = 33

	opReturn = 35
)

// arithOpcode maps the operand-less arithmetic/logic/compare Ops to their
// opcode number. Not is handled separately: it emits a 2-word instruction
// instead of the usual 3.
var arithOpcode = map[ir.Op]int32{
	ir.Add: opAdd, ir.Sub: opSub, ir.Mul: opMul, ir.Div: opDiv,
	ir.Equals: opEquals, ir.Less: opLess, ir.Greater: opGreater,
	ir.LessEqual: opLessEqual, ir.GreaterEqual: opGreaterEqual,
	ir.Or: opOr, ir.And: opAnd, ir.Xor: opXor,
}

// WordCount returns how many machine words i contributes once emitted.
// Emit does not call it (it measures sections from the words it appends);
// it serves callers (e.g. a future dead-code/peephole pass) that need to
// reason about code size without actually emitting.
func WordCount(i ir.Ir) int {
	switch i.Op {
	case ir.TagOp:
		return 0
	case ir.Return:
		return 1
	case ir.Not, ir.Branch, ir.CondBranch, ir.IndirBranch, ir.Call:
		return 2
	case ir.RawOp:
		return len(i.Raw)
	default:
		return 3
	}
}

// varAddrTagName is the only tag name recognized during emission.
const varAddrTagName = "var_addr"

// patch records a forward reference to a symbol name whose absolute
// address is not yet known: symbol-section addresses depend on the final
// data-section size, which is only final once every variable in the
// program (including ones discovered after the symbol section) has been
// seen.
type patch struct {
	idx  int
	name string
}

type emitter struct {
	vars       map[string]int32 // resolved variable name -> data-section slot (relative to DataSegment)
	varAddr    int64            // next free data-section slot
	symbolLocal map[string]int64 // symbol name -> offset within the symbol section
	symbolAddr int64            // next free symbol-section slot

	body    []int32
	patches []patch
}

// Layout bundles the emitted word vector with the section sizes Testable
// Property 1 (§8) checks against.
type Layout struct {
	Words              []int32
	PrologueLen        int
	DataSectionSize    int64
	SymbolSectionSize  int64
	MainCodeLen        int
	EpilogueLen        int
	// Vars is the final name -> absolute address map (a variable's entry is
	// the data section's start plus its slot), exposed so callers (tests,
	// cmd/blocksc) can assert Testable Property 3 directly.
	Vars map[string]int32
}

// prologueLen is fixed: two RegWrite instructions (3 words each) plus one
// Branch (2 words). It never depends on program content. Variable operands
// are emitted as data-section slot numbers (relative to the DataSegment
// register), so they are resolved immediately and need no patch list.
const prologueLen = 3 + 3 + 2

// epilogueLen is fixed: two RegWrite instructions (3 words each) zeroing
// Flag and Error, plus Return (1 word).
const epilogueLen = 3 + 3 + 1

// Emit lays out res (the IrResult produced by ir.Lower on a program's root
// Block) into the final word vector.
func Emit(res *ir.Result, varAddrStart int64) (*Layout, error) {
	e := &emitter{
		vars:        make(map[string]int32),
		varAddr:     varAddrStart,
		symbolLocal: make(map[string]int64),
	}

	for _, name := range res.Blocks.Order() {
		blockIR, _ := res.Blocks.Get(name)
		e.symbolLocal[name] = e.symbolAddr
		start := len(e.body)
		if err := e.emitList(blockIR); err != nil {
			return nil, err
		}
		e.symbolAddr += int64(len(e.body) - start)
	}
	symbolSectionSize := e.symbolAddr
	mainStart := len(e.body)

	if err := e.emitList(res.IR); err != nil {
		return nil, err
	}
	mainCodeLen := len(e.body) - mainStart

	dataSectionSize := e.varAddr - varAddrStart
	invariant.Invariant(dataSectionSize >= 0, "var_addr cursor moved backwards: start=%d final=%d", varAddrStart, e.varAddr)

	for _, p := range e.patches {
		local, ok := e.symbolLocal[p.name]
		if !ok {
			return nil, errs.NewNamed(errs.UndeclaredVar, p.name)
		}
		e.body[p.idx] = int32(prologueLen + dataSectionSize + local)
	}

	dataStart := int64(prologueLen)
	symbolStart := dataStart + dataSectionSize
	mainCodeStart := symbolStart + symbolSectionSize

	words := make([]int32, 0, prologueLen+int(dataSectionSize)+len(e.body)+epilogueLen)
	words = append(words,
		opRegWrite, int32(lexer.DataSegment), int32(dataStart),
		opRegWrite, int32(lexer.FlowSegment), int32(symbolStart),
		opBranch, int32(mainCodeStart),
	)
	words = append(words, make([]int32, int(dataSectionSize))...)
	words = append(words, e.body...)
	words = append(words,
		opRegWrite, int32(lexer.Flag), 0,
		opRegWrite, int32(lexer.Error), 0,
		opReturn,
	)

	finalVars := make(map[string]int32, len(e.vars)+len(e.symbolLocal))
	for name, slot := range e.vars {
		finalVars[name] = int32(dataStart) + slot
	}
	for name, local := range e.symbolLocal {
		finalVars[name] = int32(prologueLen + dataSectionSize + local)
	}

	return &Layout{
		Words:             words,
		PrologueLen:       prologueLen,
		DataSectionSize:   dataSectionSize,
		SymbolSectionSize: symbolSectionSize,
		MainCodeLen:       mainCodeLen,
		EpilogueLen:       epilogueLen,
		Vars:              finalVars,
	}, nil
}

// target resolves addr in a "target" (write/destination) position: an
// unknown Variable name is assigned the next free data-section slot
// rather than erroring, matching get_var_or_new's declare-on-first-write
// behavior.
func (e *emitter) target(addr ir.Address) int32 {
	if addr.Kind == ir.StaticKind {
		return int32(addr.Value)
	}
	if a, ok := e.vars[addr.Name]; ok {
		return a
	}
	a := int32(e.varAddr)
	e.vars[addr.Name] = a
	e.varAddr++
	return a
}

// source resolves addr in a "source" (read) position: an unknown
// Variable name is UndeclaredVar unless it names a symbol, in which case
// a patch is recorded and a placeholder word appended to body at idx.
func (e *emitter) source(addr ir.Address, idx int) (int32, error) {
	if addr.Kind == ir.StaticKind {
		return int32(addr.Value), nil
	}
	if a, ok := e.vars[addr.Name]; ok {
		return a, nil
	}
	if _, ok := e.symbolLocal[addr.Name]; ok {
		e.patches = append(e.patches, patch{idx: idx, name: addr.Name})
		return 0, nil
	}
	return 0, errs.NewNamed(errs.UndeclaredVar, addr.Name)
}

func (e *emitter) emitList(instrs []ir.Ir) error {
	for _, i := range instrs {
		if err := e.emitOne(i); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitOne(i ir.Ir) error {
	switch i.Op {
	case ir.Write:
		a := e.target(i.A)
		d := e.target(i.B) // the data word may be Variable(name) from @name; declared on first use
		e.body = append(e.body, opWrite, a, d)

	case ir.Copy:
		a := e.target(i.A)
		e.body = append(e.body, opCopy, a, 0)
		idx := len(e.body) - 1
		b, err := e.source(i.B, idx)
		if err != nil {
			return err
		}
		e.body[idx] = b

	case ir.IndirWrite:
		a := e.target(i.A)
		d := e.target(i.B)
		e.body = append(e.body, opIndirWrite, a, d)

	case ir.IndirCopy:
		a := e.target(i.A)
		e.body = append(e.body, opIndirCopy, a, 0)
		idx := len(e.body) - 1
		b, err := e.source(i.B, idx)
		if err != nil {
			return err
		}
		e.body[idx] = b

	case ir.IndirCopy3:
		a := e.target(i.A)
		e.body = append(e.body, opIndirCopy3, a, 0)
		idx := len(e.body) - 1
		b, err := e.source(i.B, idx)
		if err != nil {
			return err
		}
		e.body[idx] = b

	case ir.RegWrite:
		d := e.target(i.B)
		e.body = append(e.body, opRegWrite, int32(i.Reg), d)

	case ir.RegCopy:
		a := e.target(i.A)
		e.body = append(e.body, opRegCopy, int32(i.Reg), a)

	case ir.RegMem:
		a := e.target(i.A)
		e.body = append(e.body, opRegMem, a, int32(i.Reg))

	case ir.Not:
		e.body = append(e.body, opNot, 0)

	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Equals, ir.Less, ir.Greater,
		ir.LessEqual, ir.GreaterEqual, ir.Or, ir.And, ir.Xor:
		op, ok := arithOpcode[i.Op]
		invariant.Invariant(ok, "ir op %d has no opcode entry", i.Op)
		e.body = append(e.body, op, 0, 1)

	case ir.Branch:
		e.body = append(e.body, opBranch, 0)
		idx := len(e.body) - 1
		a, err := e.source(i.A, idx)
		if err != nil {
			return err
		}
		e.body[idx] = a

	case ir.CondBranch:
		e.body = append(e.body, opCondBranch, 0)
		idx := len(e.body) - 1
		a, err := e.source(i.A, idx)
		if err != nil {
			return err
		}
		e.body[idx] = a

	case ir.IndirBranch:
		e.body = append(e.body, opIndirBranch, 0)
		idx := len(e.body) - 1
		a, err := e.source(i.A, idx)
		if err != nil {
			return err
		}
		e.body[idx] = a

	case ir.Call:
		e.body = append(e.body, opCall, 0)
		idx := len(e.body) - 1
		a, err := e.source(i.A, idx)
		if err != nil {
			return err
		}
		e.body[idx] = a

	case ir.Return:
		e.body = append(e.body, opReturn)

	case ir.RawOp:
		for _, w := range i.Raw {
			e.body = append(e.body, int32(w))
		}

	case ir.TagOp:
		return e.applyTag(i.Key, i.Val)

	default:
		invariant.Invariant(false, "ir op %d has no emission rule", i.Op)
	}
	return nil
}

// applyTag interprets a compile-time tag. var_addr is the only recognized
// name; it forces the var_addr cursor to a specific starting address
// (e.g. so a variable can be placed at a fixed, externally-agreed slot).
func (e *emitter) applyTag(key, val string) error {
	if key != varAddrTagName {
		return errs.NewNamed(errs.UnknownTag, key)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return errs.NewNamed(errs.TagError, key)
	}
	e.varAddr = n
	return nil
}
