package admin

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apexfab/roofmate/internal/taxonomy"
	"github.com/spf13/cobra"
)

// ResolveCmd returns the resolve command, a diagnostic for solution matching.
func ResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <query...>",
		Short: "Resolve free text to a canonical solution",
		Long:  "Resolve a sales query to its canonical solution and storage folder without starting the server",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolve,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

type resolveOutput struct {
	Query      string `json:"query"`
	Normalized string `json:"normalized"`
	Solution   string `json:"solution,omitempty"`
	Folder     string `json:"folder,omitempty"`
	AnchorType string `json:"anchor_type,omitempty"`
	Matched    bool   `json:"matched"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	registry := taxonomy.NewRegistry(taxonomy.DefaultSolutions())
	matcher := taxonomy.NewMatcher(registry)

	out := resolveOutput{
		Query:      query,
		Normalized: taxonomy.Normalize(query),
	}
	if sol := matcher.Resolve(query); sol != nil {
		out.Solution = sol.Key
		out.Folder = sol.Folder()
		out.AnchorType = string(sol.AnchorType)
		out.Matched = true
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if !out.Matched {
		fmt.Printf("no solution matched for %q (normalized: %q)\n", out.Query, out.Normalized)
		return nil
	}

	fmt.Printf("query:      %s\n", out.Query)
	fmt.Printf("normalized: %s\n", out.Normalized)
	fmt.Printf("solution:   %s\n", out.Solution)
	fmt.Printf("folder:     %s\n", out.Folder)
	fmt.Printf("anchor:     %s\n", out.AnchorType)
	return nil
}
