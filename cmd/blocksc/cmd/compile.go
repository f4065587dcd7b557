package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengowen123/blocks/blocks"
	"github.com/pengowen123/blocks/internal/cache"
)

var outputFile string

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Blocks source file to its machine-word vector",
	Long: `Compile a Blocks program through the full lexer -> tree -> ir -> emit
pipeline and write the resulting word vector.

With outputFormat "decimal" (the default) each word is written on its own
line; with "binary" the words are written as a flat stream of
little-endian 32-bit integers.

If cacheDir is set in .blocksc.yaml, a content-addressed cache keyed on
the source text and varAddrStart is consulted first.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
}

func runCompile(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	result, err := compileWithCache(source)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", filename, err)
	}

	logger.Debug("compiled", "file", filename, "words", len(result.Words),
		"dataSectionSize", result.DataSectionSize, "symbolSectionSize", result.SymbolSectionSize)

	return writeOutput(result.Words)
}

func compileWithCache(source string) (*blocks.Result, error) {
	opts := blocks.Options{VarAddrStart: cfg.VarAddrStart}

	if cfg.CacheDir == "" {
		return blocks.CompileWith(source, opts)
	}

	c := cache.New(cfg.CacheDir)
	c.SetLogger(logger)
	key := cache.Key(source, opts.VarAddrStart)

	if entry, ok, err := c.Get(key); err != nil {
		return nil, err
	} else if ok {
		return &blocks.Result{
			Words:             entry.Words,
			DataSectionSize:   entry.DataSectionSize,
			SymbolSectionSize: entry.SymbolSectionSize,
			Vars:              entry.Vars,
		}, nil
	}

	result, err := blocks.CompileWith(source, opts)
	if err != nil {
		return nil, err
	}

	if err := c.Put(key, &cache.Entry{
		Words:             result.Words,
		DataSectionSize:   result.DataSectionSize,
		SymbolSectionSize: result.SymbolSectionSize,
		Vars:              result.Vars,
	}); err != nil {
		logger.Warn("failed to store compile cache entry", "error", err)
	}

	return result, nil
}

func writeOutput(words []int32) error {
	var buf bytes.Buffer
	switch cfg.OutputFormat {
	case "binary":
		for _, w := range words {
			if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
				return fmt.Errorf("encoding word vector: %w", err)
			}
		}
	default:
		lines := make([]string, len(words))
		for i, w := range words {
			lines[i] = strconv.FormatInt(int64(w), 10)
		}
		buf.WriteString(strings.Join(lines, "\n"))
		buf.WriteString("\n")
	}

	if outputFile == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(outputFile, buf.Bytes(), 0o644)
}
