package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pengowen123/blocks/lexer"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Blocks source file and print the resulting tokens",
	Long: `Tokenize a Blocks program and print its token sequence, one per line.

Useful for debugging the lexer's keyword/register/raw-literal recognition
without running the rest of the pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	l.SetLogger(logger)
	tokens := l.Tokens()

	logger.Debug("lexed file", "file", filename, "tokens", len(tokens))
	for i, tok := range tokens {
		fmt.Printf("%4d  %-12s %s\n", i, tok.Kind, tok.String())
	}
	return nil
}
