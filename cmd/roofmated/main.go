package main

import (
	"fmt"
	"os"

	"github.com/apexfab/roofmate/internal/cli"
	"github.com/apexfab/roofmate/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roofmated",
		Short: "Roofmate daemon and CLI",
		Long:  "Roofmate daemon for running the knowledge retrieval API and folder routing diagnostics",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ResolveCmd())
	rootCmd.AddCommand(admin.FoldersCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
