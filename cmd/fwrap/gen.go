package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fwrap/internal/config"
	"fwrap/internal/diag"
	"fwrap/internal/native"
	"fwrap/internal/pipeline"
	"fwrap/internal/version"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] [procedures.yaml]",
	Short: "Generate the extension module for a set of procedures",
	Long: `Generate a Cython extension module (.pyx) and its declarations (.pxd)
from a procedure description file. Overrides given with --override are merged
into the matching procedures; without a procedure file they are wrapped on
their own.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGen,
}

func init() {
	f := genCmd.Flags()
	f.StringP("override", "o", "", "override interface file to merge")
	f.String("config", "", "configuration file (default: nearest fwrap.toml)")
	f.String("out", "", "output directory (default: [output] dir)")
	f.StringP("module", "m", "", "extension module name")
	f.Bool("stdout", false, "print the module to stdout instead of writing files")
	f.String("snapshot", "", "also write the assembled procedures to this msgpack file")
	f.String("from-snapshot", "", "regenerate from a snapshot instead of procedure files")
	f.Bool("f77binding", false, "generate for the f77binding calling convention")
	f.Bool("emulate-f2py", false, "accept f2py-style argument casting")
	f.Bool("no-templates", false, "disable template detection")
	f.Bool("no-pxd", false, "do not write the declaration file")
	f.Int("jobs", 0, "max parallel assemblers (0=auto)")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.String("format", "pretty", "diagnostics format (pretty|json|short)")
	f.Bool("with-notes", false, "include diagnostic notes")
	f.BoolP("verbose", "v", false, "also show informational diagnostics")
	f.Bool("warnings-as-errors", false, "exit with status 1 when warnings are reported")
	f.Bool("timings", false, "print stage timings")
}

type genOptions struct {
	override     string
	configPath   string
	out          string
	module       string
	stdout       bool
	snapshot     string
	fromSnapshot string
	jobs         int
	ui           uiMode
	diag         diagOptions
	strict       bool
	timings      bool
}

func readGenOptions(cmd *cobra.Command) (genOptions, error) {
	var opts genOptions
	f := cmd.Flags()
	var err error
	get := func(name string, dst *string) {
		if err == nil {
			*dst, err = f.GetString(name)
		}
	}
	getBool := func(name string, dst *bool) {
		if err == nil {
			*dst, err = f.GetBool(name)
		}
	}
	var uiStr string
	get("override", &opts.override)
	get("config", &opts.configPath)
	get("out", &opts.out)
	get("module", &opts.module)
	get("snapshot", &opts.snapshot)
	get("from-snapshot", &opts.fromSnapshot)
	get("ui", &uiStr)
	get("format", &opts.diag.format)
	getBool("stdout", &opts.stdout)
	getBool("with-notes", &opts.diag.withNotes)
	getBool("verbose", &opts.diag.verbose)
	getBool("warnings-as-errors", &opts.strict)
	getBool("timings", &opts.timings)
	if err == nil {
		opts.jobs, err = f.GetInt("jobs")
	}
	if err == nil {
		opts.diag.max, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	}
	if err != nil {
		return opts, fmt.Errorf("failed to read flags: %w", err)
	}
	if opts.ui, err = readUIMode(uiStr); err != nil {
		return opts, err
	}
	if err := readDiagFormat(opts.diag.format); err != nil {
		return opts, err
	}
	return opts, nil
}

// loadGenConfig reads the configuration and applies the command-line
// overrides on top of it.
func loadGenConfig(cmd *cobra.Command, opts genOptions) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if opts.configPath != "" {
		path = opts.configPath
		cfg, err = config.Load(path)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, "", err
		}
		cfg, path, err = config.LoadOrDefault(wd)
	}
	if err != nil {
		return nil, "", err
	}

	f := cmd.Flags()
	if f.Changed("f77binding") {
		cfg.Wrap.F77Binding, _ = f.GetBool("f77binding")
	}
	if f.Changed("emulate-f2py") {
		cfg.Wrap.EmulateF2Py, _ = f.GetBool("emulate-f2py")
	}
	if noTemplates, _ := f.GetBool("no-templates"); noTemplates {
		cfg.Wrap.DetectTemplates = false
	}
	if noPxd, _ := f.GetBool("no-pxd"); noPxd {
		cfg.Output.Declarations = false
	}
	if opts.module != "" {
		cfg.Output.Module = opts.module
	}
	switch {
	case opts.out != "":
		cfg.Output.Dir = opts.out
	case path != "" && !filepath.IsAbs(cfg.Output.Dir):
		cfg.Output.Dir = filepath.Join(filepath.Dir(path), cfg.Output.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func readModule(path string, rep diag.Reporter) (*native.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mod, err := native.Decode(f, fileReporter{next: rep, path: path})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readGenOptions(cmd)
	if err != nil {
		return err
	}
	cfg, cfgPath, err := loadGenConfig(cmd, opts)
	if err != nil {
		return err
	}

	var res pipeline.Result
	if opts.fromSnapshot != "" {
		if len(args) > 0 || opts.override != "" {
			return fmt.Errorf("--from-snapshot cannot be combined with procedure files")
		}
		snap, err := pipeline.LoadSnapshot(opts.fromSnapshot)
		if err != nil {
			return err
		}
		if opts.module == "" && cfgPath == "" && snap.Module != "" {
			cfg.Output.Module = snap.Module
		}
		if res, err = pipeline.Render(snap.Procedures, cfg, version.Version, opts.diag.max); err != nil {
			return err
		}
	} else {
		if res, err = generate(cmd, args, cfg, cfgPath, opts); err != nil {
			dumpTrace()
			return err
		}
	}

	if opts.snapshot != "" {
		if err := pipeline.SaveSnapshot(opts.snapshot, cfg.Output.Module, res.Procedures); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	diagOut := cmd.OutOrStdout()
	if opts.stdout {
		diagOut = cmd.ErrOrStderr()
		if _, err := cmd.OutOrStdout().Write(res.Module); err != nil {
			return err
		}
	} else {
		paths, err := pipeline.WriteFiles(cfg.Output.Dir, res)
		if err != nil {
			return err
		}
		if opts.diag.format == "pretty" {
			printWritten(diagOut, paths, len(res.Procedures))
		}
	}

	if err := printDiagnostics(diagOut, res.Diagnostics, opts.diag); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	if opts.timings {
		if err := printStageTimings(cmd.ErrOrStderr(), res.Timings); err != nil {
			return err
		}
	}
	if res.Diagnostics.HasErrors() || (opts.strict && res.Diagnostics.HasWarnings()) {
		return &exitError{code: 1}
	}
	return nil
}

func generate(cmd *cobra.Command, args []string, cfg *config.Config, cfgPath string, opts genOptions) (pipeline.Result, error) {
	if len(args) == 0 && opts.override == "" {
		return pipeline.Result{}, fmt.Errorf("nothing to generate: give a procedure file, --override or --from-snapshot")
	}
	inputs := diag.NewBag(opts.diag.max)
	rep := diag.BagReporter{Bag: inputs}

	req := &pipeline.Request{
		Config:         cfg,
		Version:        version.Version,
		Jobs:           opts.jobs,
		MaxDiagnostics: opts.diag.max,
	}
	var err error
	if len(args) > 0 {
		if req.Native, err = readModule(args[0], rep); err != nil {
			return pipeline.Result{}, err
		}
		if opts.module == "" && cfgPath == "" && req.Native.Name != "" {
			cfg.Output.Module = req.Native.Name
		}
	}
	if opts.override != "" {
		if req.Overrides, err = readModule(opts.override, rep); err != nil {
			return pipeline.Result{}, err
		}
	}

	var res pipeline.Result
	if useProgressUI(opts.ui, opts.stdout) {
		res, err = runWithUI(cmd.Context(), "fwrap "+cfg.Output.Module, progressNames(req), req)
	} else {
		res, err = pipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		return res, err
	}
	res.Diagnostics.Merge(inputs)
	res.Diagnostics.Sort()
	return res, nil
}

// progressNames lists the procedures the pipeline reports progress for.
func progressNames(req *pipeline.Request) []string {
	mod := req.Native
	if mod == nil || len(mod.Procedures) == 0 {
		mod = req.Overrides
	}
	if mod == nil {
		return nil
	}
	names := make([]string, len(mod.Procedures))
	for i, p := range mod.Procedures {
		names[i] = p.Name
	}
	return names
}

func printWritten(out io.Writer, paths []string, wrappers int) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(out, "wrote %s (%d wrappers)\n", strings.Join(paths, ", "), wrappers)
}
