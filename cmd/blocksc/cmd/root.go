package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pengowen123/blocks/internal/config"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blocksc",
	Short: "Compiler driver for the Blocks language",
	Long: `blocksc is the external driver around the Blocks compiler core.

It reads source files, loads .blocksc.yaml configuration, and exercises
the lexer, tree builder, IR lowerer, and emitter - none of which do any
I/O themselves.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfigAndLogger,
}

// Execute runs the CLI, returning the first error any subcommand produces.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".blocksc.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfigAndLogger(*cobra.Command, []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	return nil
}

func readSource(args []string) (source, filename string, err error) {
	if len(args) != 1 {
		return "", "", fmt.Errorf("expected exactly one source file")
	}
	filename = args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(data), filename, nil
}
