package merge

import (
	"fmt"

	"fwrap/internal/diag"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

// MergeAll merges every override into the canonical procedure for the
// same native routine. Several overrides may wrap one routine and each is
// merged on its own. When a merge fails the problem is reported and an
// unmerged copy of the canonical procedure is kept once, however many of
// its overrides failed. Routines without overrides are kept as they are.
func MergeAll(canonical, overrides []*wrap.Procedure, rep diag.Reporter) []*wrap.Procedure {
	if rep == nil {
		rep = diag.NopReporter
	}
	byNative := make(map[string][]*wrap.Procedure)
	for _, o := range overrides {
		key := native.FoldName(o.NativeName)
		byNative[key] = append(byNative[key], o)
	}

	var out []*wrap.Procedure
	used := make(map[string]bool)
	for _, c := range canonical {
		key := native.FoldName(c.NativeName)
		overs := byNative[key]
		if len(overs) == 0 {
			out = append(out, c)
			continue
		}
		used[key] = true
		kept := false
		for _, o := range overs {
			merged, err := MergeProcedure(c, o, rep)
			if err != nil {
				diag.ReportWarning(rep, diag.CodeOf(err), c.Name,
					fmt.Sprintf("could not merge override %q, please modify manually: %s", o.Name, errMessage(err))).Emit()
				if !kept {
					out = append(out, c.Clone())
					kept = true
				}
				continue
			}
			diag.ReportInfo(rep, diag.PipMerged, merged.Name,
				fmt.Sprintf("merged override into native routine %s", c.NativeName)).Emit()
			out = append(out, merged)
		}
	}
	for _, o := range overrides {
		if !used[native.FoldName(o.NativeName)] {
			diag.ReportWarning(rep, diag.PipSkipped, o.Name,
				fmt.Sprintf("override refers to unknown native routine %q", o.NativeName)).Emit()
		}
	}
	return out
}

func errMessage(err error) string {
	if e, ok := diag.AsError(err); ok {
		return e.Msg
	}
	return err.Error()
}

// Standalone post-processes an override that has no native counterpart:
// defaults, shapes and checks are translated and the inputs reordered.
// Call statements cannot be honoured without the native signature.
func Standalone(p *wrap.Procedure, rep diag.Reporter) (*wrap.Procedure, error) {
	if rep == nil {
		rep = diag.NopReporter
	}
	res := p.Clone()
	byName := make(map[string]wrap.ArgID)
	for i, a := range res.Args.Args() {
		byName[a.Name] = wrap.ArgID(i + 1)
	}
	if err := ProcessInArgs(res); err != nil {
		return nil, forSubject(err, res.Name)
	}
	res.Checks = translateChecks(res, res.Name, rep)
	if err := translateArgs(res, byName, res.Name, rep); err != nil {
		return nil, err
	}
	return res, nil
}
