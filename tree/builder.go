package tree

import (
	"strconv"
	"strings"

	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/internal/invariant"
	"github.com/pengowen123/blocks/lexer"
)

// item is a stack slot: either a fully reduced Tree, or a token still
// waiting to be consumed as a leaf operand by some enclosing operator.
type item struct {
	tree *Tree
	tok  lexer.Token
}

func leafItem(tok lexer.Token) item { return item{tok: tok} }
func treeItem(t *Tree) item         { return item{tree: t} }

func (it item) asTree() *Tree {
	if it.tree != nil {
		return it.tree
	}
	return &Tree{Kind: Leaf, Token: it.tok}
}

// Build converts a token sequence (as produced by lexer.Tokenize, Null
// sentinels included) into a Tree::Block of top-level statements.
//
// The algorithm processes tokens in REVERSE. A stack accumulates leaf
// tokens; when an operator token is reached, the builder pops exactly its
// operand count and folds them into a new node, in source order, without
// any further reversal - reverse scan plus a LIFO stack cancel out. Braces
// divert this same process into a side stack so a Symbol's body collects
// independently of the statements around it; only one level of nesting is
// supported; a stray brace is UnmatchedToken.
func Build(tokens []lexer.Token) (*Tree, error) {
	var main, side []item
	nested := false

	active := func() *[]item {
		if nested {
			return &side
		}
		return &main
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]

		switch tok.Kind {
		case lexer.Null, lexer.AssignSymbol, lexer.LineEnd:
			continue

		case lexer.CloseBrace:
			if nested {
				return nil, errs.New(errs.UnmatchedToken, tok)
			}
			nested = true
			continue

		case lexer.OpenBrace:
			if !nested {
				return nil, errs.New(errs.UnmatchedToken, tok)
			}
			nested = false
			children, err := harvest(side)
			if err != nil {
				return nil, err
			}
			side = nil
			*active() = append(*active(), treeItem(&Tree{Kind: Block, Children: children}))
			continue
		}

		if arity, ok := operandCount[tok.Kind]; ok {
			stack := active()
			if len(*stack) < arity {
				return nil, errs.New(errs.NotEnoughArgs, tok)
			}
			operands := pop(stack, arity)
			node, err := buildNode(tok, operands)
			if err != nil {
				return nil, err
			}
			*stack = append(*stack, treeItem(node))
			continue
		}

		// Leaf token: Identifier, Number, Register. Anything reaching here
		// that is none of those is source garbage the grammar never
		// produces a statement around; it simply sits on the stack until
		// an enclosing operator rejects it or it survives to harvest time.
		*active() = append(*active(), leafItem(tok))
	}

	if nested {
		return nil, errs.New(errs.UnmatchedToken, lexer.Token{Kind: lexer.OpenBrace})
	}

	children, err := harvest(main)
	if err != nil {
		return nil, err
	}
	return &Tree{Kind: Block, Children: children}, nil
}

// pop removes and returns the top n items of *stack, top-first. For a
// reverse scan over a LIFO stack this order already matches source order;
// see Build's doc comment.
func pop(stack *[]item, n int) []item {
	s := *stack
	invariant.Precondition(len(s) >= n, "stack has %d items, need %d", len(s), n)
	out := make([]item, n)
	for i := 0; i < n; i++ {
		out[i] = s[len(s)-1-i]
	}
	*stack = s[:len(s)-n]
	return out
}

// harvest drains a finished stack into statement children, in source
// order. A leftover non-reduced token means a statement never found its
// leading operator.
func harvest(stack []item) ([]*Tree, error) {
	out := make([]*Tree, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		it := stack[i]
		if it.tree == nil {
			return nil, errs.New(errs.UnexpectedToken, it.tok)
		}
		out = append(out, it.tree)
	}
	return out, nil
}

func buildNode(tok lexer.Token, operands []item) (*Tree, error) {
	if kind, ok := binaryKind[tok.Kind]; ok {
		return &Tree{Kind: kind, Lhs: operands[0].asTree(), Rhs: operands[1].asTree()}, nil
	}
	if kind, ok := unaryKind[tok.Kind]; ok {
		return &Tree{Kind: kind, Operand: operands[0].asTree()}, nil
	}

	switch tok.Kind {
	case lexer.Assign:
		return &Tree{Kind: Assign, Lhs: operands[0].asTree(), Rhs: operands[1].asTree()}, nil

	case lexer.Return:
		return &Tree{Kind: Return}, nil

	case lexer.Raw:
		return buildRaw(tok, operands[0])

	case lexer.Tag:
		return buildTag(tok, operands[0], operands[1])

	case lexer.Symbol:
		return buildSymbol(tok, operands[0], operands[1])
	}

	invariant.Invariant(false, "operator %s has no node builder", tok.Kind)
	return nil, nil
}

// buildRaw requires its single operand to be the verbatim Identifier a
// backtick literal produces, and every whitespace-separated word in it to
// parse as an integer.
func buildRaw(tok lexer.Token, operand item) (*Tree, error) {
	if operand.tree != nil || operand.tok.Kind != lexer.Identifier {
		return nil, errs.New(errs.InvalidRaw, tok)
	}

	words := strings.Fields(operand.tok.Text)
	vals := make([]int64, 0, len(words))
	for _, w := range words {
		n, err := strconv.ParseInt(w, 10, 64)
		if err != nil {
			return nil, errs.New(errs.InvalidRaw, operand.tok)
		}
		vals = append(vals, n)
	}
	return &Tree{Kind: Raw, RawWords: vals}, nil
}

func buildTag(tok lexer.Token, key, val item) (*Tree, error) {
	keyStr, ok := leafText(key)
	if !ok {
		return nil, errs.New(errs.TagNameType, leafOrOperator(key, tok))
	}
	valStr, ok := leafText(val)
	if !ok {
		return nil, errs.New(errs.TagValueType, leafOrOperator(val, tok))
	}
	return &Tree{Kind: Tag, TagKey: keyStr, TagVal: valStr}, nil
}

func buildSymbol(tok lexer.Token, name, body item) (*Tree, error) {
	if name.tree != nil || name.tok.Kind != lexer.Identifier {
		return nil, errs.New(errs.SymbolNameType, leafOrOperator(name, tok))
	}
	b := body.asTree()
	if b.Kind != Block {
		b = &Tree{Kind: Block, Children: []*Tree{b}}
	}
	return &Tree{Kind: Symbol, Name: name.tok.Text, Body: b}, nil
}

// leafText resolves a stack item to its Tag operand spelling: an
// Identifier's text, or a Number's decimal rendering. Anything else
// (including a reduced subtree) is rejected by the caller.
func leafText(it item) (string, bool) {
	if it.tree != nil {
		return "", false
	}
	switch it.tok.Kind {
	case lexer.Identifier:
		return it.tok.Text, true
	case lexer.Number:
		return strconv.FormatInt(it.tok.Num, 10), true
	default:
		return "", false
	}
}

// leafOrOperator picks the most useful token to anchor an error on: the
// offending operand's own token if it has one, else the enclosing operator.
func leafOrOperator(it item, op lexer.Token) lexer.Token {
	if it.tree == nil {
		return it.tok
	}
	return op
}
