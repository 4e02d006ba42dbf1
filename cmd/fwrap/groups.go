package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fwrap/internal/config"
	"fwrap/internal/dedup"
	"fwrap/internal/diag"
)

var groupsCmd = &cobra.Command{
	Use:   "groups [flags] <procedures.yaml>",
	Short: "List the procedure families that would become templates",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroups,
}

func init() {
	groupsCmd.Flags().String("prefixes", "", "precision prefixes, in order (default: [naming] prefixes)")
	groupsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runGroups(cmd *cobra.Command, args []string) error {
	prefixes, err := cmd.Flags().GetString("prefixes")
	if err != nil {
		return fmt.Errorf("failed to get prefixes flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (expected pretty|json)", format)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, _, err := config.LoadOrDefault(wd)
	if err != nil {
		return err
	}
	conv := cfg.Convention()
	if prefixes != "" {
		conv.Prefixes = prefixes
		conv.RealPrefixes = ""
	}

	mod, err := readModule(args[0], diag.NopReporter)
	if err != nil {
		return err
	}
	names := make([]string, len(mod.Procedures))
	for i, p := range mod.Procedures {
		names[i] = p.Name
	}
	groups := append(dedup.FindCandidateGroups(names, conv), cfg.ExplicitGroups()...)
	return printGroups(cmd.OutOrStdout(), groups, format)
}

func printGroups(out io.Writer, groups [][]string, format string) error {
	if format == "json" {
		if groups == nil {
			groups = [][]string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}
	if len(groups) == 0 {
		_, err := fmt.Fprintln(out, "no template candidates")
		return err
	}
	for _, g := range groups {
		if _, err := fmt.Fprintln(out, strings.Join(g, ", ")); err != nil {
			return err
		}
	}
	return nil
}
