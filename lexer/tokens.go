// Package lexer converts Blocks source text into a flat token sequence.
package lexer

import "strconv"

// TokenType identifies the lexical category of a Token.
type TokenType int

const (
	Null TokenType = iota
	Assign
	AssignSymbol // the bare '=' sign, before two-char combination
	Symbol
	Goto
	IfGoto
	Call
	Return
	Raw
	Tag
	Dereference
	Address

	Add
	Sub
	Mul
	Div
	Not
	And
	Or
	Xor

	Equals
	Less
	Greater
	LessEqual
	GreaterEqual
	Compare

	OpenBrace
	CloseBrace
	LineEnd

	Identifier
	Number
	Register
	Other
)

// String renders a TokenType for diagnostics and error templates.
func (t TokenType) String() string {
	switch t {
	case Null:
		return "null"
	case Assign:
		return "set"
	case AssignSymbol:
		return "="
	case Symbol:
		return "symbol"
	case Goto:
		return "goto"
	case IfGoto:
		return "ifgoto"
	case Call:
		return "call"
	case Return:
		return "return"
	case Raw:
		return "raw"
	case Tag:
		return "?"
	case Dereference:
		return "#"
	case Address:
		return "@"
	case Add:
		return "+"
	case Sub:
		return "~"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Not:
		return "!"
	case And:
		return "&"
	case Or:
		return "|"
	case Xor:
		return "^"
	case Equals:
		return "=="
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Compare:
		return "cmp"
	case OpenBrace:
		return "{"
	case CloseBrace:
		return "}"
	case LineEnd:
		return ";"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case Register:
		return "register"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Reg is the fixed, target-VM-visible register enumeration. Ordinals are
// load bearing: they are emitted verbatim as RegWrite/RegCopy/RegMem operands.
type Reg int

const (
	Int1 Reg = iota
	Int2
	Int3
	Int4
	Flag
	Accum
	Error
	FlowSegment
	DataSegment
	PCounter
)

func (r Reg) String() string {
	switch r {
	case Int1:
		return "$int1"
	case Int2:
		return "$int2"
	case Int3:
		return "$int3"
	case Int4:
		return "$int4"
	case Flag:
		return "$flag"
	case Accum:
		return "$accum"
	case Error:
		return "$error"
	case FlowSegment:
		return "$segment"
	case DataSegment:
		return "$data"
	case PCounter:
		return "$pcounter"
	default:
		return "$?"
	}
}

// registerNames maps the `$`-prefixed source spelling to its Reg, including
// the source aliases ($int1, $int2, $accum, $flag, $error,
// $segment, $pcounter) plus the remaining machine registers.
var registerNames = map[string]Reg{
	"$int1":     Int1,
	"$int2":     Int2,
	"$int3":     Int3,
	"$int4":     Int4,
	"$flag":     Flag,
	"$accum":    Accum,
	"$error":    Error,
	"$segment":  FlowSegment,
	"$flow":     FlowSegment,
	"$data":     DataSegment,
	"$dseg":     DataSegment,
	"$pcounter": PCounter,
}

// keywords maps reserved source words to their token type.
var keywords = map[string]TokenType{
	"set":    Assign,
	"cmp":    Compare,
	"symbol": Symbol,
	"goto":   Goto,
	"ifgoto": IfGoto,
	"call":   Call,
	"return": Return,
	"raw":    Raw,
}

// Token is a tagged variant: Kind identifies the case, Text/Num/Reg carry
// the payload for Identifier/Number/Register/Other respectively.
//
// Equality for tree-building arity lookups ignores the payload: an
// Identifier token is an Identifier token regardless of its name.
type Token struct {
	Kind TokenType
	Text string // Identifier, Other payload (and the raw backtick body pre-split)
	Num  int64  // Number payload
	Reg  Reg    // Register payload
}

// String renders the token the way error templates want to see it: its
// source spelling, not its internal Go representation.
func (t Token) String() string {
	switch t.Kind {
	case Identifier, Other:
		return t.Text
	case Number:
		return strconv.FormatInt(t.Num, 10)
	case Register:
		return t.Reg.String()
	default:
		return t.Kind.String()
	}
}
