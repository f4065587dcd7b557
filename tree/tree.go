// Package tree builds a prefix-operator syntax tree from a lexer token
// sequence. Build is the package's single entry point.
package tree

import "github.com/pengowen123/blocks/lexer"

// Kind identifies which case of Tree a node represents. Exactly the fields
// documented for that case are populated; the rest are zero.
type Kind int

const (
	// Block's children are the statements of a program or a symbol body,
	// in source order.
	Block Kind = iota

	// Assign: Lhs and Rhs.
	Assign

	// Binary arithmetic/comparison operators: Lhs and Rhs.
	Add
	Sub
	Mul
	Div
	Xor
	And
	Or
	Equals
	Less
	Greater
	LessEqual
	GreaterEqual

	// Unary operators: Operand.
	Dereference
	Address
	Not
	Goto
	IfGoto
	Call
	Compare

	// Return takes no operands.
	Return

	// Raw: RawWords, already parsed from the backing identifier's payload.
	Raw

	// Tag: TagKey, TagVal, both resolved to their string spelling.
	Tag

	// Symbol: Name and Body (always a Block).
	Symbol

	// Leaf wraps a single Identifier, Number, or Register token.
	Leaf
)

// Tree is a single prefix-operator syntax tree node. Which fields are
// meaningful is determined entirely by Kind; see the Kind constants above.
type Tree struct {
	Kind Kind

	Children []*Tree // Block
	Lhs, Rhs *Tree   // binary operators
	Operand  *Tree   // unary operators

	Name string // Symbol
	Body *Tree  // Symbol

	TagKey, TagVal string // Tag

	RawWords []int64 // Raw

	Token lexer.Token // Leaf
}

// binaryKind maps a binary operator token to its Tree Kind.
var binaryKind = map[lexer.TokenType]Kind{
	lexer.Add:          Add,
	lexer.Sub:          Sub,
	lexer.Mul:          Mul,
	lexer.Div:          Div,
	lexer.Xor:          Xor,
	lexer.And:          And,
	lexer.Or:           Or,
	lexer.Equals:       Equals,
	lexer.Less:         Less,
	lexer.Greater:      Greater,
	lexer.LessEqual:    LessEqual,
	lexer.GreaterEqual: GreaterEqual,
}

// unaryKind maps a unary operator token to its Tree Kind.
var unaryKind = map[lexer.TokenType]Kind{
	lexer.Dereference: Dereference,
	lexer.Address:     Address,
	lexer.Not:         Not,
	lexer.Goto:        Goto,
	lexer.IfGoto:      IfGoto,
	lexer.Call:        Call,
	lexer.Compare:     Compare,
}

// operandCount is the fixed input arity table: the number of OPERANDS each
// operator consumes, not counting the operator token itself. Keyed by
// TokenType rather than by any enum ordinal - an accidental reordering of
// the TokenType const block must not silently change an operator's arity.
var operandCount = map[lexer.TokenType]int{
	lexer.Assign: 2,
	lexer.Symbol: 2, // name, body
	lexer.Goto:   1,
	lexer.IfGoto: 1,
	lexer.Call:   1,
	lexer.Return: 0,
	lexer.Raw:    1,
	lexer.Tag:    2, // key, value

	lexer.Dereference: 1,
	lexer.Address:     1,
	lexer.Not:         1,
	lexer.Compare:     1,

	lexer.Add:          2,
	lexer.Sub:          2,
	lexer.Mul:          2,
	lexer.Div:          2,
	lexer.Xor:          2,
	lexer.And:          2,
	lexer.Or:           2,
	lexer.Equals:       2,
	lexer.Less:         2,
	lexer.Greater:      2,
	lexer.LessEqual:    2,
	lexer.GreaterEqual: 2,
}

// IsLeaf reports whether t wraps a bare token (Identifier, Number, or
// Register) rather than an operator application.
func (t *Tree) IsLeaf() bool { return t.Kind == Leaf }
