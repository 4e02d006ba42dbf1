package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fwrap/internal/expr"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] <expression>...",
	Short: "Translate call-statement expressions to Python",
	Long: `Translate C-like expressions as found in call statements and check
clauses. Variables are shown as {name} unless bound with --var.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringSlice("var", nil, "bind a variable, e.g. --var n=n_ (repeatable)")
	translateCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type translation struct {
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
	Doc      string   `json:"doc,omitempty"`
	Requires []string `json:"requires,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func runTranslate(cmd *cobra.Command, args []string) error {
	bindings, err := cmd.Flags().GetStringSlice("var")
	if err != nil {
		return fmt.Errorf("failed to get var flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	vars, err := parseBindings(bindings)
	if err != nil {
		return err
	}
	results := make([]translation, len(args))
	failed := false
	for i, src := range args {
		results[i] = translateOne(src, vars)
		failed = failed || results[i].Error != ""
	}
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	case "pretty":
		if err := printTranslations(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (expected pretty|json)", format)
	}
	if failed {
		return &exitError{code: 1}
	}
	return nil
}

func parseBindings(bindings []string) (map[string]string, error) {
	vars := make(map[string]string, len(bindings))
	for _, b := range bindings {
		name, value, ok := strings.Cut(b, "=")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid --var %q (expected name=value)", b)
		}
		vars[name] = value
	}
	return vars, nil
}

// translateOne renders src. Unbound variables keep their {name} form.
func translateOne(src string, vars map[string]string) translation {
	t := translation{Source: src}
	e, err := expr.Translate(src)
	if err != nil {
		t.Error = err.Error()
		return t
	}
	bound := make(map[string]string, len(e.Requires))
	for _, name := range e.Requires {
		if v, ok := vars[name]; ok {
			bound[name] = v
		} else {
			bound[name] = "{" + name + "}"
		}
	}
	r, err := e.Substitute(bound, nil)
	if err != nil {
		t.Error = err.Error()
		return t
	}
	t.Code, t.Doc, t.Requires = r.Code, r.Doc, e.Requires
	return t
}

func printTranslations(out io.Writer, results []translation) error {
	for i, t := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "source:   %s\n", t.Source)
		if t.Error != "" {
			if _, err := fmt.Fprintf(out, "error:    %s\n", t.Error); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "code:     %s\n", t.Code)
		if t.Doc != t.Code {
			fmt.Fprintf(out, "doc:      %s\n", t.Doc)
		}
		if len(t.Requires) > 0 {
			if _, err := fmt.Fprintf(out, "requires: %s\n", strings.Join(t.Requires, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
