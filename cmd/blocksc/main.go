// Command blocksc is the thin external driver around the Blocks compiler
// core: it owns source file I/O, logging, configuration, and the compile
// cache. None of that belongs in the core - this binary
// exists only to exercise lexer/tree/ir/emit/blocks end to end.
package main

import (
	"fmt"
	"os"

	"github.com/pengowen123/blocks/cmd/blocksc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
