package lexer_test

import (
	"testing"

	"github.com/pengowen123/blocks/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeIsBracketedByNull(t *testing.T) {
	tests := []string{
		"",
		"   \n\t  ",
		"set x = 1;",
		"// a whole comment line\n",
	}

	for _, src := range tests {
		toks := lexer.Tokenize(src)
		require.NotEmpty(t, toks)
		assert.Equal(t, lexer.Null, toks[0].Kind, "first token must be Null for %q", src)
		assert.Equal(t, lexer.Null, toks[len(toks)-1].Kind, "last token must be Null for %q", src)
	}
}

func TestTokenizeKeywordsAndOperators(t *testing.T) {
	toks := lexer.Tokenize("set x = + 1 2;")

	kinds := kindsOf(toks)
	assert.Equal(t, []lexer.TokenType{
		lexer.Null,
		lexer.Assign, lexer.Identifier, lexer.AssignSymbol, lexer.Add,
		lexer.Number, lexer.Number, lexer.LineEnd,
		lexer.Null,
	}, kinds)
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	cases := map[string]lexer.TokenType{
		"==": lexer.Equals,
		">=": lexer.GreaterEqual,
		"<=": lexer.LessEqual,
	}

	for src, want := range cases {
		toks := lexer.Tokenize("cmp " + src + " x y;")
		kinds := kindsOf(toks)
		require.Len(t, kinds, 7)
		assert.Equal(t, want, kinds[2], "operator for %q", src)
	}
}

func TestTokenizeEqualsMergeRequiresNoWhitespace(t *testing.T) {
	// "> =" (space-separated) must stay two tokens; only "==", ">=", "<="
	// with no intervening whitespace merge into a single operator.
	toks := lexer.Tokenize("cmp > = x y;")
	kinds := kindsOf(toks)
	assert.Equal(t, []lexer.TokenType{
		lexer.Null, lexer.Compare, lexer.Greater, lexer.AssignSymbol,
		lexer.Identifier, lexer.Identifier, lexer.LineEnd, lexer.Null,
	}, kinds)
}

func TestTokenizeDoesNotConfuseDivideWithComment(t *testing.T) {
	toks := lexer.Tokenize("set x = / a b; // trailing\n")
	kinds := kindsOf(toks)
	assert.Contains(t, kinds, lexer.Div)
	// the comment contributes no tokens beyond the statement's own LineEnd
	assert.Equal(t, lexer.LineEnd, kinds[len(kinds)-2])
}

func TestTokenizeRawBacktickIsVerbatimIdentifier(t *testing.T) {
	toks := lexer.Tokenize("raw `10 7 0 10 8 0 29 -1`;")
	kinds := kindsOf(toks)
	require.Equal(t, []lexer.TokenType{lexer.Null, lexer.Raw, lexer.Identifier, lexer.LineEnd, lexer.Null}, kinds)
	assert.Equal(t, "10 7 0 10 8 0 29 -1", toks[2].Text)
}

func TestTokenizeNegativeNumber(t *testing.T) {
	toks := lexer.Tokenize("set x = -1;")
	kinds := kindsOf(toks)
	require.Len(t, kinds, 7)
	assert.Equal(t, lexer.Number, kinds[4])
	assert.Equal(t, int64(-1), toks[4].Num)
}

func TestTokenizeRegisters(t *testing.T) {
	toks := lexer.Tokenize("set $int1 = $accum;")
	require.Len(t, toks, 7)
	assert.Equal(t, lexer.Register, toks[1].Kind)
	assert.Equal(t, lexer.Int1, toks[1].Reg)
	assert.Equal(t, lexer.Register, toks[4].Kind)
	assert.Equal(t, lexer.Accum, toks[4].Reg)
}

func TestTokenizeSymbolBlock(t *testing.T) {
	toks := lexer.Tokenize("symbol Loop { return }")
	kinds := kindsOf(toks)
	assert.Equal(t, []lexer.TokenType{
		lexer.Null, lexer.Symbol, lexer.Identifier, lexer.OpenBrace,
		lexer.Return, lexer.CloseBrace, lexer.Null,
	}, kinds)
}

func TestTokenizeIsTotalOnGarbage(t *testing.T) {
	// The lexer never errors, even on unmatched backticks or stray symbols.
	assert.NotPanics(t, func() {
		lexer.Tokenize("`unterminated raw ??? @@@ ~~~")
	})
}

func kindsOf(toks []lexer.Token) []lexer.TokenType {
	kinds := make([]lexer.TokenType, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}
