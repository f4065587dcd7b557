package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengowen123/blocks/lexer"
	"github.com/pengowen123/blocks/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Parse a Blocks source file and print the resulting syntax tree",
	Long: `Build the prefix-operator syntax tree for a Blocks program and print
it indented by nesting depth.

Useful for debugging the reverse-stack tree builder's handling of operator
arity and brace nesting without running IR lowering or emission.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	root, err := tree.Build(lexer.Tokenize(source))
	if err != nil {
		return fmt.Errorf("building tree for %s: %w", filename, err)
	}

	logger.Debug("built tree", "file", filename, "statements", len(root.Children))
	dumpTree(root, 0)
	return nil
}

func dumpTree(t *tree.Tree, depth int) {
	indent := strings.Repeat("  ", depth)

	switch t.Kind {
	case tree.Block:
		fmt.Printf("%sBlock\n", indent)
		for _, child := range t.Children {
			dumpTree(child, depth+1)
		}
	case tree.Assign:
		fmt.Printf("%sAssign\n", indent)
		dumpTree(t.Lhs, depth+1)
		dumpTree(t.Rhs, depth+1)
	case tree.Add, tree.Sub, tree.Mul, tree.Div, tree.Xor, tree.And, tree.Or,
		tree.Equals, tree.Less, tree.Greater, tree.LessEqual, tree.GreaterEqual:
		fmt.Printf("%s%s\n", indent, opName(t.Kind))
		dumpTree(t.Lhs, depth+1)
		dumpTree(t.Rhs, depth+1)
	case tree.Dereference, tree.Address, tree.Not, tree.Goto, tree.IfGoto, tree.Call, tree.Compare:
		fmt.Printf("%s%s\n", indent, opName(t.Kind))
		dumpTree(t.Operand, depth+1)
	case tree.Return:
		fmt.Printf("%sReturn\n", indent)
	case tree.Raw:
		fmt.Printf("%sRaw %v\n", indent, t.RawWords)
	case tree.Tag:
		fmt.Printf("%sTag %s = %s\n", indent, t.TagKey, t.TagVal)
	case tree.Symbol:
		fmt.Printf("%sSymbol %s\n", indent, t.Name)
		dumpTree(t.Body, depth+1)
	case tree.Leaf:
		fmt.Printf("%sLeaf %s\n", indent, t.Token.String())
	}
}

func opName(k tree.Kind) string {
	switch k {
	case tree.Add:
		return "Add"
	case tree.Sub:
		return "Sub"
	case tree.Mul:
		return "Mul"
	case tree.Div:
		return "Div"
	case tree.Xor:
		return "Xor"
	case tree.And:
		return "And"
	case tree.Or:
		return "Or"
	case tree.Equals:
		return "Equals"
	case tree.Less:
		return "Less"
	case tree.Greater:
		return "Greater"
	case tree.LessEqual:
		return "LessEqual"
	case tree.GreaterEqual:
		return "GreaterEqual"
	case tree.Dereference:
		return "Dereference"
	case tree.Address:
		return "Address"
	case tree.Not:
		return "Not"
	case tree.Goto:
		return "Goto"
	case tree.IfGoto:
		return "IfGoto"
	case tree.Call:
		return "Call"
	case tree.Compare:
		return "Compare"
	default:
		return "?"
	}
}
