package dedup

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"fwrap/internal/native"
)

// Convention is the precision-prefix naming scheme used to spot routine
// families. Prefixes are ordered by precision class; RealPrefixes are the
// classes whose complex counterparts carry a conjugation suffix.
type Convention struct {
	Prefixes          string
	RealPrefixes      string
	ConjugateSuffixes []string
}

// DefaultConvention is the BLAS/LAPACK scheme: sgemm, dgemm, cgemm, zgemm,
// and sdot, ddot with cdotc/zdotc and cdotu/zdotu.
func DefaultConvention() Convention {
	return Convention{Prefixes: "sdcz", RealPrefixes: "sd", ConjugateSuffixes: []string{"c", "u"}}
}

func (c Convention) pattern() *regexp.Regexp {
	return regexp.MustCompile(`^([` + regexp.QuoteMeta(c.Prefixes) + `])([a-z0-9_]+)$`)
}

func (c Convention) rank(name string) int {
	return strings.IndexByte(c.Prefixes, native.FoldName(name)[0])
}

func (c Convention) isReal(name string) bool {
	return strings.IndexByte(c.RealPrefixes, native.FoldName(name)[0]) >= 0
}

// FindCandidateGroups groups names that differ only in their precision
// prefix. A stem with exactly the real pair absorbs the stem+suffix groups
// of its complex counterparts. Each group is ordered by precision class,
// folded groups follow in suffix order, and only groups with more than one
// member are returned, in order of first appearance.
func FindCandidateGroups(names []string, conv Convention) [][]string {
	if conv.Prefixes == "" {
		return nil
	}
	re := conv.pattern()
	groups := make(map[string][]string)
	var stems []string
	for _, name := range names {
		m := re.FindStringSubmatch(native.FoldName(name))
		if m == nil {
			continue
		}
		stem := m[2]
		if _, ok := groups[stem]; !ok {
			stems = append(stems, stem)
		}
		groups[stem] = append(groups[stem], name)
	}
	for _, stem := range stems {
		slices.SortStableFunc(groups[stem], func(a, b string) int {
			if c := cmp.Compare(conv.rank(a), conv.rank(b)); c != 0 {
				return c
			}
			return strings.Compare(native.FoldName(a)[1:], native.FoldName(b)[1:])
		})
	}

	removed := make(map[string]bool)
	for _, stem := range stems {
		lst := groups[stem]
		if removed[stem] || len(lst) != 2 || !conv.isReal(lst[0]) || !conv.isReal(lst[1]) {
			continue
		}
		for _, suffix := range conv.ConjugateSuffixes {
			if clst, ok := groups[stem+suffix]; ok && !removed[stem+suffix] {
				removed[stem+suffix] = true
				lst = append(lst, clst...)
			}
		}
		groups[stem] = lst
	}

	var out [][]string
	for _, stem := range stems {
		if removed[stem] || len(groups[stem]) < 2 {
			continue
		}
		out = append(out, groups[stem])
	}
	return out
}
