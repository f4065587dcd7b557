package ir_test

import (
	"testing"

	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/ir"
	"github.com/pengowen123/blocks/lexer"
	"github.com/pengowen123/blocks/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, src string) *tree.Tree {
	t.Helper()
	tr, err := tree.Build(lexer.Tokenize(src))
	require.NoError(t, err)
	return tr
}

func TestLowerLiteralAssignment(t *testing.T) {
	// Scenario A.
	root := mustBuild(t, "set 0 = 1;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	require.Equal(t, []ir.Ir{
		ir.WriteIr(ir.Temp(0), ir.Static(0)),
		ir.WriteIr(ir.Temp(1), ir.Static(1)),
		ir.CopyIr(ir.Static(0), ir.Temp(1)),
	}, res.IR)
}

func TestLowerRawPassthrough(t *testing.T) {
	// Scenario B.
	root := mustBuild(t, "raw `10 7 0 10 8 0 29 -1`;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	require.Len(t, res.IR, 1)
	assert.Equal(t, ir.RawOp, res.IR[0].Op)
	assert.Equal(t, []int64{10, 7, 0, 10, 8, 0, 29, -1}, res.IR[0].Raw)
}

func TestLowerSymbolRegistersBlockBody(t *testing.T) {
	// Scenario C (lowering half): Loop's body ends up keyed by name, and
	// the trailing call references it by Variable(name), unresolved.
	root := mustBuild(t, "symbol Loop { return } call Loop;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	body, ok := res.Blocks.Get("Loop")
	require.True(t, ok)
	assert.Equal(t, []ir.Ir{{Op: ir.Return}}, body)

	require.Len(t, res.IR, 1)
	assert.Equal(t, ir.CallIr(ir.Variable("Loop")), res.IR[0])
}

func TestLowerCallRejectsComplexOperand(t *testing.T) {
	root := mustBuild(t, "call + 1 2;")
	_, err := ir.Lower(root, 0)
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.CallAddressType, be.Kind)
}

func TestLowerIfGotoAcceptsNumber(t *testing.T) {
	root := mustBuild(t, "ifgoto 42;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)
	require.Len(t, res.IR, 1)
	assert.Equal(t, ir.CondBranchIr(ir.Static(42)), res.IR[0])
}

func TestLowerAddressOfIdentifier(t *testing.T) {
	root := mustBuild(t, "set x = @ y;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	// rhs of an assignment always lowers with temp-id -2, i.e. __temp_1__:
	// @ y -> Write(temp1, Variable(y)); then Copy(x, temp1).
	require.Len(t, res.IR, 2)
	assert.Equal(t, ir.WriteIr(ir.Temp(1), ir.Variable("y")), res.IR[0])
	assert.Equal(t, ir.CopyIr(ir.Variable("x"), ir.Temp(1)), res.IR[1])
}

func TestLowerAddressRejectsNonIdentifier(t *testing.T) {
	root := mustBuild(t, "set x = @ 5;")
	_, err := ir.Lower(root, 0)
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.AddressNameType, be.Kind)
}

func TestLowerArithmeticLeavesResultInAccumThenSpillsToTemp(t *testing.T) {
	root := mustBuild(t, "set x = + 1 2;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	// insert_operator(1,2): neither side is a subtree, so lhs->Int1 then
	// rhs->Int2, then Add, then RegMem(Accum,temp1) (rhs's assign slot),
	// then Copy(x, temp1).
	var ops []ir.Op
	for _, in := range res.IR {
		ops = append(ops, in.Op)
	}
	assert.Contains(t, ops, ir.Add)
	assert.Contains(t, ops, ir.RegMem)
	assert.Equal(t, ir.Copy, ops[len(ops)-1])
}

func TestLowerArithmeticWithLiteralOperandRedirectsToItsTemp(t *testing.T) {
	// "+ x 128": the literal 128 is itself written to a temp slot by its
	// own leaf lowering (WriteIr(temp, Static(128))), so the RegCopy that
	// loads it into Int2 must address that temp, not the bare value 128 -
	// otherwise emit would read register-memory address 128 instead of
	// loading the literal.
	root := mustBuild(t, "set x = + x 128;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	var regCopies []ir.Ir
	for _, in := range res.IR {
		if in.Op == ir.RegCopy {
			regCopies = append(regCopies, in)
		}
	}
	require.Len(t, regCopies, 2)
	assert.Equal(t, lexer.Int1, regCopies[0].Reg)
	assert.Equal(t, ir.Variable("x"), regCopies[0].A)
	assert.Equal(t, lexer.Int2, regCopies[1].Reg)
	assert.Equal(t, ir.Temp(1), regCopies[1].A)
}

func TestLowerNestedArithmeticUsesSwappedRegisterOrdering(t *testing.T) {
	// Both sides of the outer Add are themselves Add subtrees (prefix
	// grammar needs no parens: "+ + 1 2 + 3 4" is Add(Add(1,2), Add(3,4))),
	// so insertOperator takes the "both subtrees" path: lhs targets Int2,
	// rhs targets Int1, with the deferred RegCopy reordering.
	root := mustBuild(t, "set x = + + 1 2 + 3 4;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	var regCopies []ir.Ir
	for _, in := range res.IR {
		if in.Op == ir.RegCopy {
			regCopies = append(regCopies, in)
		}
	}
	// Both inner Add(1,2)/Add(3,4) subtrees contribute their own
	// register_store pairs first; the outer pair - rhs's subtree finishing
	// into Int1, then the deferred lhs subtree's copy into Int2 - comes
	// last, in that order.
	require.GreaterOrEqual(t, len(regCopies), 2)
	last2 := regCopies[len(regCopies)-2:]
	assert.Equal(t, lexer.Int1, last2[0].Reg)
	assert.Equal(t, lexer.Int2, last2[1].Reg)
}

func TestLowerNotSpillsAccumToTemp(t *testing.T) {
	root := mustBuild(t, "set x = ! 1;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	var ops []ir.Op
	for _, in := range res.IR {
		ops = append(ops, in.Op)
	}
	assert.Contains(t, ops, ir.Not)
	assert.Contains(t, ops, ir.RegMem)
}

func TestLowerBlockUnionsSymbolMaps(t *testing.T) {
	root := mustBuild(t, "symbol A { return } symbol B { return }")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Blocks.Order())
}

func TestLowerRegisterLeafAssignment(t *testing.T) {
	root := mustBuild(t, "set $int1 = 5;")
	res, err := ir.Lower(root, 0)
	require.NoError(t, err)

	// rhs (5) spills nothing register-wise; lhs is a register, so the
	// final instruction is a RegCopy from temp1 into Int1.
	last := res.IR[len(res.IR)-1]
	assert.Equal(t, ir.RegCopy, last.Op)
	assert.Equal(t, lexer.Int1, last.Reg)
	assert.Equal(t, ir.Temp(1), last.A)
}
