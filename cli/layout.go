package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sliverarmory/loadctx/platform"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [library]",
	Short: "Print the native library directory for each platform under the root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		out := cmd.OutOrStdout()
		for _, family := range platform.Families() {
			marker := " "
			if family == app.natives.Family() {
				marker = "*"
			}
			path := filepath.Join(app.natives.Root(), platform.Dir(family), name)
			app.printer.Fprintf(out, "%s %-8s %s\n", marker, family, path)
		}
		if !app.natives.Family().Known() {
			app.printer.Fprintf(out, "* %-8s %s\n", app.natives.Family(), app.natives.Path(name))
		}
		return nil
	},
}
