package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the fwrap CLI. Override at link time with -ldflags.
var (
	// Version is the semantic version, without color.
	Version = "0.1.0-dev"

	GitCommit = ""

	// BuildDate is ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders v with each numeric component highlighted. Any
// pre-release suffix is kept plain. Color follows color.NoColor.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
