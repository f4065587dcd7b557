// Package blocks is the single core entry point of the Blocks compiler:
// Compile wires the lexer, tree builder, IR lowerer, and emitter together
// and returns either the final machine-word vector or a structured error.
package blocks

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pengowen123/blocks/emit"
	"github.com/pengowen123/blocks/errs"
	"github.com/pengowen123/blocks/ir"
	"github.com/pengowen123/blocks/lexer"
	"github.com/pengowen123/blocks/tree"
)

// BlocksError is the structured error type every stage past the lexer can
// return. It is an alias, not a new type: errs.Error already carries
// everything a caller needs (Kind, offending token/name, Suggestion), and
// keeping it in errs lets tree/ir/emit depend on it without importing this
// package.
type BlocksError = errs.Error

// knownTags lists every tag name the emitter recognizes. Compile uses it to
// propose a nearest match when a program references an unknown tag.
var knownTags = []string{"var_addr"}

// Result bundles everything Compile produces beyond the bare word vector:
// the section sizes and final variable/symbol address map, useful to a
// caller (cmd/blocksc, internal/cache) that wants to report or persist
// more than just the emitted bytes.
type Result struct {
	Words             []int32
	DataSectionSize   int64
	SymbolSectionSize int64
	Vars              map[string]int32
}

// Options configures a single Compile call. The zero value is valid and
// matches the core's defaults (var_addr cursor starts at 0).
type Options struct {
	// VarAddrStart is the data-section cursor's initial value, overridable
	// per-file by a `? var_addr` tag. internal/config's varAddrStart feeds
	// this from .blocksc.yaml; callers that don't load config get 0.
	VarAddrStart int64
}

// Compile translates Blocks source text into its final machine-word
// vector. This is the package's external entry point.
func Compile(source string) ([]int32, error) {
	res, err := CompileWith(source, Options{})
	if err != nil {
		return nil, err
	}
	return res.Words, nil
}

// CompileWith is Compile with explicit Options, used by callers that load
// internal/config or otherwise need control over the var_addr start.
func CompileWith(source string, opts Options) (*Result, error) {
	tokens := lexer.Tokenize(source)

	root, err := tree.Build(tokens)
	if err != nil {
		return nil, annotate(err)
	}

	lowered, err := ir.Lower(root, 0)
	if err != nil {
		return nil, annotate(err)
	}

	layout, err := emit.Emit(lowered, opts.VarAddrStart)
	if err != nil {
		return nil, annotate(err)
	}

	return &Result{
		Words:             layout.Words,
		DataSectionSize:   layout.DataSectionSize,
		SymbolSectionSize: layout.SymbolSectionSize,
		Vars:              layout.Vars,
	}, nil
}

// annotate adds a fuzzy-matched suggestion to UnknownTag errors. Every
// other error kind passes through unchanged: a nearest-match suggestion
// only makes sense against a known, finite vocabulary, and tag names are
// the only one Compile has on hand.
func annotate(err error) error {
	be, ok := err.(*errs.Error)
	if !ok || be.Kind != errs.UnknownTag {
		return err
	}
	if match := nearestTag(be.Name); match != "" {
		be.Suggestion = match
	}
	return be
}

func nearestTag(name string) string {
	ranks := fuzzy.RankFindFold(name, knownTags)
	if len(ranks) == 0 {
		return ""
	}
	return ranks[0].Target
}
