package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sliverarmory/loadctx/module"
)

var bundles []string

var moduleCmd = &cobra.Command{
	Use:   "module <name>",
	Short: "Resolve a module from payloads embedded in loaded bundles",
	Long: `Registers each --bundle directory as a loaded module, in the order given,
then loads <name>. A bundle named Game satisfies a request for Physics when it
contains the file Game.Physics.<suffix>. Use NAME=DIR to name a bundle
explicitly; otherwise the directory's base name is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range bundles {
			name, dir, err := parseBundle(arg)
			if err != nil {
				return err
			}
			app.lc.Add(module.NewFS(name, os.DirFS(dir)))
		}

		m, err := app.lc.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w, ok := m.(*module.Wasm)
		if !ok {
			app.printer.Fprintf(out, "%s\n", m.Name())
			return nil
		}
		exports := w.Exports()
		app.printer.Fprintf(out, "%s\t%s\t%d exports\n", w.Name(), w.Digest(), len(exports))
		for _, export := range exports {
			app.printer.Fprintf(out, "  %s\n", export)
		}
		return nil
	},
}

func parseBundle(arg string) (string, string, error) {
	name, dir, found := strings.Cut(arg, "=")
	if !found {
		dir = arg
		name = filepath.Base(filepath.Clean(arg))
	}
	if name == "" || dir == "" {
		return "", "", fmt.Errorf("invalid bundle %q", arg)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", "", fmt.Errorf("bundle %s: %w", name, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("bundle %s: %s is not a directory", name, dir)
	}
	return name, dir, nil
}

func init() {
	moduleCmd.Flags().StringArrayVar(&bundles, "bundle", nil, "Bundle directory to register as a loaded module (repeatable, NAME=DIR)")
}
