package tree_test

import (
	"testing"

	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/lexer"
	"github.com/pengowen123/blocks/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *tree.Tree {
	t.Helper()
	tr, err := tree.Build(lexer.Tokenize(src))
	require.NoError(t, err)
	return tr
}

func TestBuildLiteralAssignment(t *testing.T) {
	// Scenario A.
	root := build(t, "set 0 = 1;")
	require.Len(t, root.Children, 1)

	stmt := root.Children[0]
	require.Equal(t, tree.Assign, stmt.Kind)
	assert.Equal(t, tree.Leaf, stmt.Lhs.Kind)
	assert.Equal(t, int64(0), stmt.Lhs.Token.Num)
	assert.Equal(t, tree.Leaf, stmt.Rhs.Kind)
	assert.Equal(t, int64(1), stmt.Rhs.Token.Num)
}

func TestBuildBinaryOperandOrderIsSourceOrder(t *testing.T) {
	root := build(t, "set x = + x 128;")
	stmt := root.Children[0]
	add := stmt.Rhs

	require.Equal(t, tree.Add, add.Kind)
	assert.Equal(t, lexer.Identifier, add.Lhs.Token.Kind)
	assert.Equal(t, "x", add.Lhs.Token.Text)
	assert.Equal(t, int64(128), add.Rhs.Token.Num)
}

func TestBuildRawPassthrough(t *testing.T) {
	// Scenario B.
	root := build(t, "raw `10 7 0 10 8 0 29 -1`;")
	require.Len(t, root.Children, 1)
	raw := root.Children[0]
	require.Equal(t, tree.Raw, raw.Kind)
	assert.Equal(t, []int64{10, 7, 0, 10, 8, 0, 29, -1}, raw.RawWords)
}

func TestBuildSymbolWithLoopBody(t *testing.T) {
	// Scenario C.
	src := "symbol Loop { set x = + x 128; set i = ~ i 1; cmp > i 0; ifgoto Loop; return } " +
		"set x = 0; set i = 3; call Loop;"
	root := build(t, src)

	require.Len(t, root.Children, 4)

	sym := root.Children[0]
	require.Equal(t, tree.Symbol, sym.Kind)
	assert.Equal(t, "Loop", sym.Name)
	require.NotNil(t, sym.Body)
	require.Equal(t, tree.Block, sym.Body.Kind)
	require.Len(t, sym.Body.Children, 5)

	assert.Equal(t, tree.Assign, sym.Body.Children[0].Kind)
	assert.Equal(t, tree.Assign, sym.Body.Children[1].Kind)
	assert.Equal(t, tree.Compare, sym.Body.Children[2].Kind)
	assert.Equal(t, tree.IfGoto, sym.Body.Children[3].Kind)
	assert.Equal(t, tree.Return, sym.Body.Children[4].Kind)

	call := root.Children[3]
	require.Equal(t, tree.Call, call.Kind)
	assert.Equal(t, "Loop", call.Operand.Token.Text)
}

func TestBuildTagLiteral(t *testing.T) {
	// Scenario F.
	root := build(t, "? var_addr 100;")
	require.Len(t, root.Children, 1)
	tag := root.Children[0]
	require.Equal(t, tree.Tag, tag.Kind)
	assert.Equal(t, "var_addr", tag.TagKey)
	assert.Equal(t, "100", tag.TagVal)
}

func TestBuildTagRejectsNonLeafOperands(t *testing.T) {
	_, err := tree.Build(lexer.Tokenize("? + 1 2 100;"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.TagNameType, be.Kind)
}

func TestBuildSymbolRejectsNonIdentifierName(t *testing.T) {
	_, err := tree.Build(lexer.Tokenize("symbol 5 { return }"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.SymbolNameType, be.Kind)
}

func TestBuildInvalidRaw(t *testing.T) {
	// Scenario E.
	_, err := tree.Build(lexer.Tokenize("raw `1 two 3`;"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidRaw, be.Kind)
}

func TestBuildNotEnoughArgs(t *testing.T) {
	_, err := tree.Build(lexer.Tokenize("set x;"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.NotEnoughArgs, be.Kind)
}

func TestBuildUnmatchedCloseBrace(t *testing.T) {
	_, err := tree.Build(lexer.Tokenize("return }"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnmatchedToken, be.Kind)
}

func TestBuildUnmatchedOpenBrace(t *testing.T) {
	_, err := tree.Build(lexer.Tokenize("symbol Loop { return"))
	require.Error(t, err)
	be, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnmatchedToken, be.Kind)
}

func TestBuildGotoAcceptsComplexOperand(t *testing.T) {
	// Tree building never checks Goto/IfGoto/Call operand shape - that is
	// deferred to IR lowering - so an arbitrary expression is accepted here.
	root := build(t, "goto + x 1;")
	stmt := root.Children[0]
	require.Equal(t, tree.Goto, stmt.Kind)
	assert.Equal(t, tree.Add, stmt.Operand.Kind)
}

func TestBuildMultipleStatementsPreserveOrder(t *testing.T) {
	root := build(t, "set x = 1; set y = 2; set z = 3;")
	require.Len(t, root.Children, 3)

	names := []string{"x", "y", "z"}
	for i, stmt := range root.Children {
		require.Equal(t, tree.Assign, stmt.Kind)
		assert.Equal(t, names[i], stmt.Lhs.Token.Text)
		assert.Equal(t, int64(i+1), stmt.Rhs.Token.Num)
	}
}
