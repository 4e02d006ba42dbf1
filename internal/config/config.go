// Package config loads fwrap.toml, the per-project generator settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"fwrap/internal/dedup"
	"fwrap/internal/wrap"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "fwrap.toml"

// Config is the decoded fwrap.toml.
type Config struct {
	Wrap      Wrap            `toml:"wrap"`
	Templates []TemplateGroup `toml:"template,omitempty"`
	Naming    Naming          `toml:"naming"`
	Output    Output          `toml:"output"`
}

type Wrap struct {
	F77Binding      bool `toml:"f77binding"`
	EmulateF2Py     bool `toml:"emulate-f2py"`
	DetectTemplates bool `toml:"detect-templates"`
}

// TemplateGroup names procedures to merge into one template regardless of
// their names.
type TemplateGroup struct {
	Names []string `toml:"names"`
}

// Naming is the precision-prefix convention used to detect templates.
type Naming struct {
	Prefixes          string   `toml:"prefixes"`
	RealPrefixes      string   `toml:"real-prefixes"`
	ConjugateSuffixes []string `toml:"conjugate-suffixes"`
}

type Output struct {
	Module string `toml:"module"`
	Dir    string `toml:"dir"`
	// Declarations controls the .pxd output.
	Declarations bool `toml:"declarations"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	conv := dedup.DefaultConvention()
	return &Config{
		Wrap: Wrap{DetectTemplates: true},
		Naming: Naming{
			Prefixes:          conv.Prefixes,
			RealPrefixes:      conv.RealPrefixes,
			ConjugateSuffixes: conv.ConjugateSuffixes,
		},
		Output: Output{Module: "fwrapped", Dir: ".", Declarations: true},
	}
}

var (
	// ErrUnknownKey reports keys the configuration does not define.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrInvalid reports values that fail validation.
	ErrInvalid = errors.New("invalid configuration")
)

// Find walks up from startDir to locate fwrap.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document over the defaults.
func Parse(src string) (*Config, error) {
	cfg := Default()
	meta, err := toml.Decode(src, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if meta.IsDefined("naming", "prefixes") && !meta.IsDefined("naming", "real-prefixes") {
		cfg.Naming.RealPrefixes = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the nearest fwrap.toml above dir, or the defaults
// when there is none. The returned path is empty in the latter case.
func LoadOrDefault(dir string) (*Config, string, error) {
	path, ok, err := Find(dir)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Config) Validate() error {
	if !identRe.MatchString(c.Output.Module) {
		return fmt.Errorf("%w: output.module %q is not an identifier", ErrInvalid, c.Output.Module)
	}
	if c.Naming.Prefixes == "" || !identRe.MatchString(c.Naming.Prefixes) {
		return fmt.Errorf("%w: naming.prefixes must be a non-empty set of letters", ErrInvalid)
	}
	for _, r := range c.Naming.RealPrefixes {
		if !strings.ContainsRune(c.Naming.Prefixes, r) {
			return fmt.Errorf("%w: real prefix %q is not among the prefixes %q", ErrInvalid, r, c.Naming.Prefixes)
		}
	}
	for i, g := range c.Templates {
		if len(g.Names) < 2 {
			return fmt.Errorf("%w: template group %d needs at least two names", ErrInvalid, i+1)
		}
	}
	return nil
}

// WrapOptions selects the calling convention for the wrap pass.
func (c *Config) WrapOptions() wrap.Options {
	return wrap.Options{F77Binding: c.Wrap.F77Binding, EmulateF2Py: c.Wrap.EmulateF2Py}
}

// Convention is the naming scheme for template detection.
func (c *Config) Convention() dedup.Convention {
	return dedup.Convention{
		Prefixes:          strings.ToLower(c.Naming.Prefixes),
		RealPrefixes:      strings.ToLower(c.Naming.RealPrefixes),
		ConjugateSuffixes: slices.Clone(c.Naming.ConjugateSuffixes),
	}
}

// ExplicitGroups returns the [[template]] groups.
func (c *Config) ExplicitGroups() [][]string {
	out := make([][]string, len(c.Templates))
	for i, g := range c.Templates {
		out[i] = slices.Clone(g.Names)
	}
	return out
}

// Encode serializes the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return buf.Bytes(), nil
}
