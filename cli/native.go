package main

import (
	"github.com/spf13/cobra"
)

var symbolName string

var nativeCmd = &cobra.Command{
	Use:   "native <library>",
	Short: "Resolve and open a native library through the load context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := app.lc.LoadNative(requester, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		app.printer.Fprintf(out, "%s\t%#x\n", library.Path(), library.Handle())

		if symbolName != "" {
			addr, err := library.Symbol(symbolName)
			if err != nil {
				return err
			}
			app.printer.Fprintf(out, "%s\t%#x\n", symbolName, addr)
		}
		return nil
	},
}

func init() {
	nativeCmd.Flags().StringVar(&symbolName, "symbol", "", "Exported symbol to resolve after loading")
}
