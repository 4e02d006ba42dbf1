// Package dedup collapses families of near-identical wrappers, such as the
// precision variants of a BLAS routine, into one Tempita template.
package dedup

import (
	"fmt"

	"fwrap/internal/diag"
	"fwrap/internal/wrap"
)

// Deduplicate groups procs by naming convention, appends the explicit
// groups, and replaces every group that merges with a template placed at
// its first member. A group that cannot be merged is reported and its
// members are kept as they are.
func Deduplicate(procs []*wrap.Procedure, explicit [][]string, conv Convention, rep diag.Reporter) []*wrap.Procedure {
	if rep == nil {
		rep = diag.NopReporter
	}
	byName := make(map[string]*wrap.Procedure, len(procs))
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		if _, dup := byName[p.Name]; dup || p.Template != nil {
			continue
		}
		byName[p.Name] = p
		names = append(names, p.Name)
	}

	groups := FindCandidateGroups(names, conv)
	groups = append(groups, explicit...)

	out := procs
	consumed := make(map[string]bool)
	for _, group := range groups {
		members, err := resolveGroup(group, byName, consumed)
		if err != nil {
			diag.ReportErr(rep, diag.SevWarning, groupLabel(group), err)
			continue
		}
		tp, err := Merge(members)
		if err != nil {
			diag.ReportWarning(rep, diag.CodeOf(err), groupLabel(group),
				fmt.Sprintf("cannot merge into a template: %s", errMessage(err))).Emit()
			continue
		}
		for _, n := range group {
			consumed[n] = true
		}
		diag.ReportInfo(rep, diag.PipTemplate, groupLabel(group),
			fmt.Sprintf("%d procedures merged into one template", len(group))).Emit()
		out = splice(out, tp, group)
	}
	return out
}

func resolveGroup(group []string, byName map[string]*wrap.Procedure, consumed map[string]bool) ([]*wrap.Procedure, error) {
	if len(group) < 2 {
		return nil, diag.Errorf(diag.CfgUnknownTemplateMember, "a template group needs at least two names")
	}
	members := make([]*wrap.Procedure, len(group))
	for i, n := range group {
		p, ok := byName[n]
		switch {
		case !ok:
			return nil, diag.Errorf(diag.CfgUnknownTemplateMember, "no procedure named %q", n)
		case consumed[n]:
			return nil, diag.Errorf(diag.CfgUnknownTemplateMember, "%q already belongs to a template", n)
		}
		members[i] = p
	}
	return members, nil
}

func errMessage(err error) string {
	if e, ok := diag.AsError(err); ok {
		return e.Msg
	}
	return err.Error()
}

// splice puts tp where group[0] was and drops the other members.
func splice(procs []*wrap.Procedure, tp *wrap.Procedure, group []string) []*wrap.Procedure {
	drop := make(map[string]bool, len(group)-1)
	for _, n := range group[1:] {
		drop[n] = true
	}
	out := make([]*wrap.Procedure, 0, len(procs)-len(drop))
	for _, p := range procs {
		switch {
		case p.Template == nil && p.Name == group[0]:
			out = append(out, tp)
		case p.Template == nil && drop[p.Name]:
		default:
			out = append(out, p)
		}
	}
	return out
}
