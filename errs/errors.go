// Package errs defines the structured, user-facing error type returned by
// every stage of the Blocks compiler past the lexer. The lexer is total and
// never returns one of these; tree building, IR lowering, and emission do.
package errs

import (
	"fmt"

	"github.com/pengowen123/blocks/lexer"
)

// Kind identifies the category of a compile error. Ordering is stable and
// doubles as the human-facing error code (e.g. "E03" for SymbolNameType).
type Kind int

const (
	UnexpectedToken Kind = iota
	NotEnoughArgs
	SymbolNameType
	TagNameType
	TagValueType
	UndeclaredVar
	InvalidRaw
	UnmatchedToken
	AddressNameType
	InvalidAddress
	CallAddressType
	IfGotoAddressType
	UnknownTag
	TagError
	Other
)

var templates = map[Kind]string{
	UnexpectedToken:    "unexpected token %s",
	NotEnoughArgs:      "not enough arguments for %s",
	SymbolNameType:     "symbol name must be an identifier, got %s",
	TagNameType:        "tag name must be an identifier or number, got %s",
	TagValueType:       "tag value must be an identifier or number, got %s",
	UndeclaredVar:      "undeclared variable %s",
	InvalidRaw:         "invalid raw literal near %s",
	UnmatchedToken:     "unmatched token %s",
	AddressNameType:    "address operand must be an identifier, got %s",
	InvalidAddress:     "invalid address for %s",
	CallAddressType:    "call target must be an identifier or number, got %s",
	IfGotoAddressType:  "ifgoto target must be an identifier or number, got %s",
	UnknownTag:         "unknown tag %s",
	TagError:           "bad value for tag %s",
	Other:              "%s",
}

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case NotEnoughArgs:
		return "NotEnoughArgs"
	case SymbolNameType:
		return "SymbolNameType"
	case TagNameType:
		return "TagNameType"
	case TagValueType:
		return "TagValueType"
	case UndeclaredVar:
		return "UndeclaredVar"
	case InvalidRaw:
		return "InvalidRaw"
	case UnmatchedToken:
		return "UnmatchedToken"
	case AddressNameType:
		return "AddressNameType"
	case InvalidAddress:
		return "InvalidAddress"
	case CallAddressType:
		return "CallAddressType"
	case IfGotoAddressType:
		return "IfGotoAddressType"
	case UnknownTag:
		return "UnknownTag"
	case TagError:
		return "TagError"
	default:
		return "Other"
	}
}

// Error is the structured error returned by the tree builder, IR lowerer,
// and emitter. It carries the offending token (or, for UndeclaredVar and
// UnknownTag, the bare name) so callers can build their own diagnostics
// instead of parsing a rendered string.
type Error struct {
	Kind  Kind
	Token lexer.Token
	Name  string // set instead of Token for UndeclaredVar/UnknownTag where there is no single source token
	// Suggestion holds a fuzzy-matched nearest known name, populated by
	// callers that have a candidate set on hand (see blocks.nearestTag).
	Suggestion string
}

func (e *Error) Error() string {
	subject := e.Name
	if subject == "" {
		subject = e.Token.String()
	}
	msg := fmt.Sprintf(templates[e.Kind], subject)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// New builds an Error anchored on a source token.
func New(kind Kind, tok lexer.Token) *Error {
	return &Error{Kind: kind, Token: tok}
}

// NewNamed builds an Error anchored on a bare name rather than a token, for
// kinds resolved after parsing (UndeclaredVar, UnknownTag).
func NewNamed(kind Kind, name string) *Error {
	return &Error{Kind: kind, Name: name}
}
