package pipeline

import (
	"bytes"
	"fmt"

	"fwrap/internal/config"
	"fwrap/internal/diag"
	"fwrap/internal/emit"
	"fwrap/internal/wrap"
)

// Render runs only the emit stage over procedures that are already
// assembled, merged and deduplicated, as when regenerating from a
// snapshot.
func Render(procs []*wrap.Procedure, cfg *config.Config, version string, maxDiagnostics int) (Result, error) {
	var res Result
	if cfg == nil {
		cfg = config.Default()
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	res.Diagnostics = diag.NewBag(maxDiagnostics)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Diagnostics})
	if len(procs) == 0 {
		return res, fmt.Errorf("no procedures to wrap")
	}
	err := render(&res, procs, cfg, version, rep)
	res.Diagnostics.Sort()
	return res, err
}

func render(res *Result, procs []*wrap.Procedure, cfg *config.Config, version string, rep diag.Reporter) error {
	settings, err := cfg.Encode()
	if err != nil {
		return err
	}
	opts := emit.Options{Name: cfg.Output.Module, Version: version, Config: settings}
	wctx := wrap.NewContext(cfg.WrapOptions(), rep)
	var pyx, pxd bytes.Buffer
	written, err := emit.Module(&pyx, procs, wctx, opts)
	if err != nil {
		return err
	}
	res.Module = pyx.Bytes()
	res.ModuleFile, res.DeclarationsFile = emit.FileNames(cfg.Output.Module, written)
	if cfg.Output.Declarations {
		if err := emit.Declarations(&pxd, written, opts); err != nil {
			return err
		}
		res.Declarations = pxd.Bytes()
	} else {
		res.DeclarationsFile = ""
	}
	res.Procedures = written
	res.Utilities = wctx.Utilities()
	return nil
}
