package cmd

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Recompile a Blocks source file on every save",
	Long: `Watch a Blocks source file and recompile it every time it changes on
disk, printing either the resulting word count or the first compile error.

Exits when the watched file is removed or renamed out from under it.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, args []string) error {
	filename := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("watching %s: %w", filename, err)
	}

	compileOnce := func() {
		source, err := os.ReadFile(filename)
		if err != nil {
			logger.Error("reading file", "file", filename, "error", err)
			return
		}
		result, err := compileWithCache(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
			return
		}
		fmt.Printf("compiled %s: %d words\n", filename, len(result.Words))
	}

	compileOnce()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				compileOnce()
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				return fmt.Errorf("%s was removed or renamed", filename)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
