package ir

import (
	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/internal/invariant"
	"github.com/pengowen123/blocks/lexer"
	"github.com/pengowen123/blocks/tree"
)

// temp1 is the reserved rhs assignment slot; Assign checks against it by
// name rather than by recomputing Temp(1) every time.
var temp1 = Temp(1)

// getTempID resolves Lower's temp-id convention: -1 is the LHS slot of an
// enclosing assignment, -2 is the RHS slot, anything else passes through
// unchanged. This keeps the two operands of an assignment in distinct
// temp slots so neither clobbers the other.
func getTempID(id int) int {
	switch id {
	case -1:
		return 0
	case -2:
		return 1
	default:
		return id
	}
}

// Lower walks t and produces its Result: a flat instruction list, any
// symbol bodies discovered along the way, and the annotations describing
// where the sub-expression's value ended up.
func Lower(t *tree.Tree, tempID int) (*Result, error) {
	switch t.Kind {
	case tree.Block:
		return lowerBlock(t)
	case tree.Assign:
		return lowerAssign(t)
	case tree.Dereference:
		return lowerDereference(t, tempID)
	case tree.Address:
		return lowerAddress(t, tempID)
	case tree.Tag:
		r := newResult()
		r.IR = append(r.IR, TagIr(t.TagKey, t.TagVal))
		return r, nil
	case tree.Symbol:
		return lowerSymbol(t)
	case tree.Compare:
		return lowerCompare(t)
	case tree.Add, tree.Sub, tree.Mul, tree.Div, tree.Xor:
		return lowerArith(t, tempID)
	case tree.Less, tree.Greater, tree.LessEqual, tree.GreaterEqual, tree.Equals:
		return lowerComparisonOp(t, tempID)
	case tree.And, tree.Or:
		return lowerBitwise(t, tempID)
	case tree.Not:
		return lowerNot(t, tempID)
	case tree.Goto:
		return lowerGoto(t)
	case tree.IfGoto:
		return lowerIfGoto(t)
	case tree.Call:
		return lowerCall(t)
	case tree.Return:
		r := newResult()
		r.IR = append(r.IR, Ir{Op: Return})
		return r, nil
	case tree.Raw:
		r := newResult()
		r.IR = append(r.IR, RawIr(t.RawWords))
		return r, nil
	case tree.Leaf:
		return lowerLeaf(t, tempID)
	}

	invariant.Invariant(false, "tree kind %d has no lowering rule", t.Kind)
	return nil, nil
}

func lowerBlock(t *tree.Tree) (*Result, error) {
	r := newResult()
	for _, stmt := range t.Children {
		child, err := Lower(stmt, 0)
		if err != nil {
			return nil, err
		}
		r.IR = append(r.IR, child.IR...)
		r.Blocks.Merge(child.Blocks)
	}
	return r, nil
}

func lowerAssign(t *tree.Tree) (*Result, error) {
	lhs, err := Lower(t.Lhs, -1)
	if err != nil {
		return nil, err
	}
	rhs, err := Lower(t.Rhs, -2)
	if err != nil {
		return nil, err
	}

	r := newResult()
	r.Blocks.Merge(lhs.Blocks)
	r.Blocks.Merge(rhs.Blocks)

	r.IR = append(r.IR, lhs.IR...)
	r.IR = append(r.IR, rhs.IR...)

	if rhs.Register != nil {
		r.IR = append(r.IR, RegMemIr(*rhs.Register, temp1))
	}

	if lhs.Register != nil {
		r.IR = append(r.IR, RegCopyIr(*lhs.Register, temp1))
		return r, nil
	}

	lhsAddr := lhs.VarAddr
	if lhs.Address == Temp(0) {
		lhsAddr = lhs.Address
	}
	rhsAddr := rhs.Address
	if isAssignedTo(temp1, rhs.IR) {
		rhsAddr = temp1
	}

	if lhsAddr.Kind == StaticKind && lhsAddr.Value < 0 {
		return nil, errs.New(errs.InvalidAddress, lexer.Token{Kind: lexer.Other, Text: lhsAddr.String()})
	}
	if rhsAddr.Kind == StaticKind && rhsAddr.Value < 0 {
		return nil, errs.New(errs.InvalidAddress, lexer.Token{Kind: lexer.Other, Text: rhsAddr.String()})
	}

	if lhs.Deref || lhs.Math {
		r.IR = append(r.IR, IndirCopyIr(lhsAddr, rhsAddr))
	} else {
		r.IR = append(r.IR, CopyIr(lhsAddr, rhsAddr))
	}
	return r, nil
}

func lowerDereference(t *tree.Tree, tempID int) (*Result, error) {
	inner, err := Lower(t.Operand, tempID)
	if err != nil {
		return nil, err
	}

	r := newResult()
	r.Blocks.Merge(inner.Blocks)
	r.IR = append(r.IR, inner.IR...)

	addr := Temp(getTempID(tempID))

	if inner.Register != nil {
		r.IR = append(r.IR, RegMemIr(*inner.Register, addr))
		r.IR = append(r.IR, IndirCopy3Ir(addr, addr))
	} else if inner.Deref {
		r.IR = append(r.IR, IndirCopyIr(addr, addr))
	} else {
		r.IR = append(r.IR, IndirCopy3Ir(addr, inner.Address))
	}

	r.Deref = true
	r.VarAddr = inner.VarAddr
	r.Address = addr
	return r, nil
}

func lowerAddress(t *tree.Tree, tempID int) (*Result, error) {
	if t.Operand.Kind != tree.Leaf || t.Operand.Token.Kind != lexer.Identifier {
		return nil, errs.New(errs.AddressNameType, addressOperandToken(t.Operand))
	}

	r := newResult()
	addr := Temp(getTempID(tempID))
	r.Address = addr
	r.IR = append(r.IR, WriteIr(addr, Variable(t.Operand.Token.Text)))
	return r, nil
}

func addressOperandToken(operand *tree.Tree) lexer.Token {
	if operand.Kind == tree.Leaf {
		return operand.Token
	}
	return lexer.Token{Kind: lexer.Other, Text: "expression"}
}

func lowerSymbol(t *tree.Tree) (*Result, error) {
	body, err := Lower(t.Body, 0)
	if err != nil {
		return nil, err
	}
	r := newResult()
	r.Blocks.Merge(body.Blocks)
	r.Blocks.Set(t.Name, body.IR)
	return r, nil
}

func lowerCompare(t *tree.Tree) (*Result, error) {
	// Compare just forwards its inner comparison's IR; the comparison
	// opcode itself was already appended by the Less/Greater/etc. node.
	// Compare exists purely so ifgoto has something to refer to as "the
	// prior comparison".
	return Lower(t.Operand, 0)
}

func lowerArith(t *tree.Tree, tempID int) (*Result, error) {
	op := arithOp(t.Kind)
	r := newResult()
	if err := insertOperator(t.Lhs, t.Rhs, &r.IR, r.Blocks, op, getTempID(tempID)); err != nil {
		return nil, err
	}
	addr := Temp(getTempID(tempID))
	r.IR = append(r.IR, RegMemIr(lexer.Accum, addr))
	r.Address = addr
	r.Math = true
	return r, nil
}

// lowerComparisonOp handles Less/Greater/LessEqual/GreaterEqual/Equals:
// unlike arithmetic, the comparison's flag result is read back later via
// Compare, not spilled to a temp here.
func lowerComparisonOp(t *tree.Tree, tempID int) (*Result, error) {
	op := arithOp(t.Kind)
	r := newResult()
	if err := insertOperator(t.Lhs, t.Rhs, &r.IR, r.Blocks, op, getTempID(tempID)); err != nil {
		return nil, err
	}
	return r, nil
}

func lowerBitwise(t *tree.Tree, tempID int) (*Result, error) {
	op := arithOp(t.Kind)
	r := newResult()
	if err := insertOperator(t.Lhs, t.Rhs, &r.IR, r.Blocks, op, getTempID(tempID)); err != nil {
		return nil, err
	}
	addr := Temp(getTempID(tempID))
	r.IR = append(r.IR, RegMemIr(lexer.Accum, addr))
	r.Address = addr
	r.Math = true
	return r, nil
}

func lowerNot(t *tree.Tree, tempID int) (*Result, error) {
	r := newResult()
	if err := registerStore(t.Operand, lexer.Int1, &r.IR, r.Blocks, getTempID(tempID)); err != nil {
		return nil, err
	}
	r.IR = append(r.IR, ArithIr(Not))
	addr := Temp(getTempID(tempID))
	r.IR = append(r.IR, RegMemIr(lexer.Accum, addr))
	r.Address = addr
	r.Math = true
	return r, nil
}

func arithOp(k tree.Kind) Op {
	switch k {
	case tree.Add:
		return Add
	case tree.Sub:
		return Sub
	case tree.Mul:
		return Mul
	case tree.Div:
		return Div
	case tree.Xor:
		return Xor
	case tree.And:
		return And
	case tree.Or:
		return Or
	case tree.Equals:
		return Equals
	case tree.Less:
		return Less
	case tree.Greater:
		return Greater
	case tree.LessEqual:
		return LessEqual
	case tree.GreaterEqual:
		return GreaterEqual
	}
	invariant.Invariant(false, "tree kind %d is not an arithmetic/logic/compare operator", k)
	return 0
}

func lowerGoto(t *tree.Tree) (*Result, error) {
	inner, err := Lower(t.Operand, 0)
	if err != nil {
		return nil, err
	}

	r := newResult()
	r.Blocks.Merge(inner.Blocks)
	r.IR = append(r.IR, inner.IR...)

	addr := inner.Address
	if t.Operand.Kind == tree.Leaf && t.Operand.Token.Kind == lexer.Identifier {
		addr = Variable(t.Operand.Token.Text)
	}

	if inner.Deref || inner.Math {
		r.IR = append(r.IR, IndirBranchIr(addr))
	} else {
		r.IR = append(r.IR, BranchIr(addr))
	}
	return r, nil
}

func lowerIfGoto(t *tree.Tree) (*Result, error) {
	addr, err := bareOperandAddress(t.Operand, errs.IfGotoAddressType)
	if err != nil {
		return nil, err
	}
	r := newResult()
	r.IR = append(r.IR, CondBranchIr(addr))
	return r, nil
}

func lowerCall(t *tree.Tree) (*Result, error) {
	addr, err := bareOperandAddress(t.Operand, errs.CallAddressType)
	if err != nil {
		return nil, err
	}
	r := newResult()
	r.IR = append(r.IR, CallIr(addr))
	return r, nil
}

// bareOperandAddress resolves an IfGoto/Call operand, which must be a bare
// identifier or number - not an arbitrary expression.
func bareOperandAddress(operand *tree.Tree, kind errs.Kind) (Address, error) {
	if operand.Kind != tree.Leaf {
		return Address{}, errs.New(kind, lexer.Token{Kind: lexer.Other, Text: "expression"})
	}
	switch operand.Token.Kind {
	case lexer.Identifier:
		return Variable(operand.Token.Text), nil
	case lexer.Number:
		return Static(operand.Token.Num), nil
	default:
		return Address{}, errs.New(kind, operand.Token)
	}
}

func lowerLeaf(t *tree.Tree, tempID int) (*Result, error) {
	r := newResult()

	switch t.Token.Kind {
	case lexer.Register:
		reg := t.Token.Reg
		addr := Temp(getTempID(tempID))
		r.Address = addr
		r.VarAddr = addr
		r.Register = &reg

	case lexer.Number:
		r.Address = Static(t.Token.Num)
		r.VarAddr = Static(t.Token.Num)
		r.IR = append(r.IR, WriteIr(Temp(getTempID(tempID)), Static(t.Token.Num)))

	case lexer.Identifier:
		r.Address = Variable(t.Token.Text)
		r.VarAddr = Variable(t.Token.Text)

	default:
		invariant.Invariant(false, "leaf token %s cannot be lowered", t.Token.Kind)
	}

	return r, nil
}

// isAssignedTo reports whether ir contains an instruction that writes
// target as its destination (and not also as its own source, which would
// just be a no-op copy).
func isAssignedTo(target Address, instrs []Ir) bool {
	for _, in := range instrs {
		switch in.Op {
		case Write, Copy, IndirCopy3:
			if in.A == target && in.B != target {
				return true
			}
		case RegMem:
			if in.A == target {
				return true
			}
		}
	}
	return false
}

// hasSubtree reports whether operand is itself built from a binary
// arithmetic/comparison operator or Not - the cases insertOperator must
// order carefully to avoid one side's internal Int1/Int2 use clobbering
// the other side's already-stored value. And/Or are deliberately excluded,
// matching the original compiler's operator table.
func hasSubtree(operand *tree.Tree) bool {
	switch operand.Kind {
	case tree.Less, tree.Greater, tree.LessEqual, tree.GreaterEqual, tree.Equals,
		tree.Add, tree.Sub, tree.Mul, tree.Div, tree.Xor, tree.Not:
		return true
	default:
		return false
	}
}

// registerStore lowers operand and leaves its value in reg: it lowers the
// operand, spills a register result to a temp if the operand produced
// one, then copies the resulting address into reg.
func registerStore(operand *tree.Tree, reg lexer.Reg, result *[]Ir, blocks *Blocks, tempID int) error {
	res, err := Lower(operand, tempID)
	if err != nil {
		return err
	}
	blocks.Merge(res.Blocks)
	*result = append(*result, res.IR...)

	addr := res.Address
	if res.Register != nil {
		addr = Temp(tempID)
		*result = append(*result, RegMemIr(*res.Register, addr))
	} else if isAssignedTo(Temp(tempID), res.IR) {
		// A literal leaf (or anything else Lower spills to its own temp
		// slot) still reports res.Address as the raw value; redirect to
		// the temp it was actually written into, the same fixup
		// lowerAssign applies to its rhs.
		addr = Temp(tempID)
	}
	*result = append(*result, RegCopyIr(reg, addr))
	return nil
}

// insertOperator lowers lhs and rhs into Int1/Int2 and appends op. The
// store order depends on which side (if either) is itself built from a
// sub-operator, to avoid that side's own Int1/Int2 use clobbering a value
// already stored by the other side:
//
//  1. rhs has no subtree (lhs may or may not): store lhs->Int1, then
//     rhs->Int2 - the common case.
//  2. lhs has no subtree and rhs does: store rhs->Int2 first, then
//     lhs->Int1, so rhs's own register use happens before lhs's simple
//     store would be clobbered by it.
//  3. both sides are subtrees: lower lhs into Int2 and rhs into Int1, but
//     defer lhs's final RegCopy until after rhs's lowering runs, so rhs's
//     internal Int1/Int2 use can't stomp on lhs's already-computed value.
func insertOperator(lhs, rhs *tree.Tree, result *[]Ir, blocks *Blocks, op Op, tempID int) error {
	lhsSubtree := hasSubtree(lhs)
	rhsSubtree := hasSubtree(rhs)

	switch {
	case !rhsSubtree:
		if err := registerStore(lhs, lexer.Int1, result, blocks, 1); err != nil {
			return err
		}
		if err := registerStore(rhs, lexer.Int2, result, blocks, 1); err != nil {
			return err
		}

	case !lhsSubtree:
		if err := registerStore(rhs, lexer.Int2, result, blocks, 1); err != nil {
			return err
		}
		if err := registerStore(lhs, lexer.Int1, result, blocks, 1); err != nil {
			return err
		}

	default:
		if err := registerStore(lhs, lexer.Int2, result, blocks, tempID+1); err != nil {
			return err
		}
		invariant.Invariant(len(*result) > 0, "registerStore must append at least its RegCopy")
		last := (*result)[len(*result)-1]
		*result = (*result)[:len(*result)-1]

		if err := registerStore(rhs, lexer.Int1, result, blocks, tempID+2); err != nil {
			return err
		}
		*result = append(*result, last)
	}

	*result = append(*result, ArithIr(op))
	return nil
}
