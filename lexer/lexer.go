package lexer

import (
	"log/slog"
	"strconv"
)

// singleCharOps lists the one-character operators this dialect recognizes.
// '~' is subtract in this dialect; '-' is not an operator and stays part
// of a word, which is what lets bare negative number literals like "-5"
// lex as a single Number token.
var singleCharOps = map[byte]TokenType{
	';': LineEnd,
	'#': Dereference,
	'@': Address,
	'*': Mul,
	'+': Add,
	'~': Sub,
	'!': Not,
	'&': And,
	'|': Or,
	'^': Xor,
	'>': Greater,
	'<': Less,
	'{': OpenBrace,
	'}': CloseBrace,
	'?': Tag,
}

func isWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

// Lexer scans Blocks source text into a token sequence. It is total: every
// input, however malformed, produces a token sequence without error. See
// Tokenize for the single entry point external callers need.
type Lexer struct {
	input string
	pos   int

	logger *slog.Logger
}

// New creates a Lexer over source. Library code never logs by default;
// attach a logger (as cmd/blocksc does) to trace scanning decisions.
func New(source string) *Lexer {
	return &Lexer{input: source}
}

// SetLogger attaches a structured logger used for scan-level tracing.
func (l *Lexer) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

func (l *Lexer) logf(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Lexer) byteAt(i int) byte {
	if i < 0 || i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// Tokenize is the package's single entry point: it lexes source into a
// token sequence bracketed by Null sentinels.
func Tokenize(source string) []Token {
	return New(source).Tokens()
}

// Tokens runs the full scan and returns the bracketed token sequence.
func (l *Lexer) Tokens() []Token {
	tokens := make([]Token, 0, len(l.input)/2+2)
	tokens = append(tokens, Token{Kind: Null})

	var word []byte
	flushWord := func() {
		if len(word) == 0 {
			return
		}
		tokens = append(tokens, classifyWord(string(word)))
		word = word[:0]
	}

	n := len(l.input)
	for l.pos < n {
		ch := l.input[l.pos]

		switch {
		case isWhitespace(ch):
			flushWord()
			l.pos++

		case ch == '/' && l.byteAt(l.pos+1) == '/':
			flushWord()
			for l.pos < n && l.input[l.pos] != '\n' {
				l.pos++
			}

		case ch == '/':
			flushWord()
			tokens = append(tokens, Token{Kind: Div})
			l.pos++

		case ch == '`':
			flushWord()
			l.pos++
			start := l.pos
			for l.pos < n && l.input[l.pos] != '`' {
				l.pos++
			}
			tokens = append(tokens, Token{Kind: Identifier, Text: l.input[start:l.pos]})
			if l.pos < n {
				l.pos++ // consume closing backtick
			}

		case ch == '=':
			flushWord()
			// Merging only applies when '=' immediately follows >, <, or =
			// with no intervening whitespace; checking the
			// raw previous byte, rather than just the last emitted token's
			// kind, is what enforces the adjacency requirement - "> ="
			// (with a space) must lex as two tokens, not GreaterEqual.
			prev := l.byteAt(l.pos - 1)
			l.pos++
			switch prev {
			case '>':
				tokens[len(tokens)-1] = Token{Kind: GreaterEqual}
			case '<':
				tokens[len(tokens)-1] = Token{Kind: LessEqual}
			case '=':
				tokens[len(tokens)-1] = Token{Kind: Equals}
			default:
				tokens = append(tokens, Token{Kind: AssignSymbol})
			}

		default:
			if kind, ok := singleCharOps[ch]; ok {
				flushWord()
				tokens = append(tokens, Token{Kind: kind})
				l.pos++
			} else {
				word = append(word, ch)
				l.pos++
			}
		}
	}
	flushWord()
	tokens = append(tokens, Token{Kind: Null})

	l.logf("tokenized", "count", len(tokens))
	return tokens
}

// classifyWord resolves a scanned word into a keyword, register, number, or
// identifier token, using the reserved-word and register tables.
func classifyWord(word string) Token {
	if kind, ok := keywords[word]; ok {
		return Token{Kind: kind}
	}
	if reg, ok := registerNames[word]; ok {
		return Token{Kind: Register, Reg: reg}
	}
	if n, err := strconv.ParseInt(word, 10, 64); err == nil {
		return Token{Kind: Number, Num: n}
	}
	return Token{Kind: Identifier, Text: word}
}
