package code

import "sort"

// Schedule orders snippets for emission.
//
// Snippets are bucketed by phase (init before check), keeping their input
// order. Inside a phase, a snippet waits for snippets of the same phase that
// provide one of its requirements and are still pending. Requirements nobody
// in the phase provides are ignored. If every pending snippet waits on
// another (a cycle), the first one is emitted anyway, so the result is
// always a permutation of the input and deterministic.
func Schedule(snippets []*Snippet) []*Snippet {
	ordered := make([]*Snippet, len(snippets))
	copy(ordered, snippets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Provides.Phase < ordered[j].Provides.Phase
	})

	out := make([]*Snippet, 0, len(ordered))
	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].Provides.Phase == ordered[start].Provides.Phase {
			end++
		}
		out = append(out, schedulePhase(ordered[start:end])...)
		start = end
	}
	return out
}

func schedulePhase(group []*Snippet) []*Snippet {
	pending := make(map[Key]int)
	for _, s := range group {
		if s.Provides.Name != "" {
			pending[s.Provides]++
		}
	}
	done := make([]bool, len(group))
	out := make([]*Snippet, 0, len(group))
	ready := func(s *Snippet) bool {
		for _, r := range s.Requires {
			if r.Phase == s.Provides.Phase && pending[r] > 0 {
				return false
			}
		}
		return true
	}
	emit := func(i int) {
		done[i] = true
		out = append(out, group[i])
		if k := group[i].Provides; k.Name != "" {
			pending[k]--
		}
	}
	for len(out) < len(group) {
		progressed := false
		for i, s := range group {
			if !done[i] && ready(s) {
				emit(i)
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}
		for i := range group {
			if !done[i] {
				emit(i)
				break
			}
		}
	}
	return out
}

// EmitAll schedules snippets and writes them into b.
func EmitAll(snippets []*Snippet, b *Buffer) {
	for _, s := range Schedule(snippets) {
		s.Emit(b)
	}
}
