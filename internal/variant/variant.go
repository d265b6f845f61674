// Package variant declares the build variants and the settings they share.
package variant

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MinGWToolchain is the cross-compilation toolchain file shipped in the source tree.
const MinGWToolchain = "toolchain-x86_64-w64-mingw32.cmake"

// Defaults shared by every variant set.
const (
	DefaultSource    = "."
	DefaultRoot      = "build"
	DefaultGenerator = "Ninja"
)

// DefaultTestCommand runs the test target of a Ninja build tree.
var DefaultTestCommand = []string{"ninja", "test"}

// Variant is one configure/build/test pipeline.
type Variant struct {
	// Name doubles as the directory below the output root.
	Name string `yaml:"name"`

	// Defines are KEY=VALUE pairs passed to cmake as -DKEY=VALUE, in order.
	Defines []string `yaml:"defines,omitempty"`

	// Toolchain is relative to the source directory.
	Toolchain string `yaml:"toolchain,omitempty"`
}

// Set is an ordered list of variants plus their shared settings.
type Set struct {
	Source      string    `yaml:"source,omitempty"`
	Root        string    `yaml:"root,omitempty"`
	Generator   string    `yaml:"generator,omitempty"`
	TestCommand []string  `yaml:"test,omitempty"`
	Variants    []Variant `yaml:"variants"`
}

// Default returns the host, ming and ming-unicode variants.
func Default() *Set {
	return &Set{
		Source:      DefaultSource,
		Root:        DefaultRoot,
		Generator:   DefaultGenerator,
		TestCommand: append([]string(nil), DefaultTestCommand...),
		Variants: []Variant{
			{
				Name:    "host",
				Defines: []string{"BUILD_TESTING=1"},
			},
			{
				Name:      "ming",
				Defines:   []string{"BUILD_TESTING=1"},
				Toolchain: MinGWToolchain,
			},
			{
				Name:      "ming-unicode",
				Defines:   []string{"BUILD_TESTING=1", "UNICODE=1"},
				Toolchain: MinGWToolchain,
			},
		},
	}
}

// ConfigError reports an unusable variant set.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.File == "" {
		return "invalid variant set: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid variant set %s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads a variant set from a YAML file. Omitted shared settings take
// their defaults.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}
	set, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}
	return set, nil
}

// Parse decodes and validates a YAML variant set. Unknown keys are errors.
func Parse(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var set Set
	if err := dec.Decode(&set); err != nil {
		if err == io.EOF {
			return nil, eris.New("empty document")
		}
		return nil, eris.Wrap(err, "failed to decode")
	}
	set.fillDefaults()
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *Set) fillDefaults() {
	if s.Source == "" {
		s.Source = DefaultSource
	}
	if s.Root == "" {
		s.Root = DefaultRoot
	}
	if s.Generator == "" {
		s.Generator = DefaultGenerator
	}
	if len(s.TestCommand) == 0 {
		s.TestCommand = append([]string(nil), DefaultTestCommand...)
	}
}

// Validate checks that every variant gets its own directory and that every
// define is well formed.
func (s *Set) Validate() error {
	if len(s.Variants) == 0 {
		return eris.New("no variants declared")
	}
	if s.Generator == "" {
		return eris.New("generator is empty")
	}
	if len(s.TestCommand) == 0 || s.TestCommand[0] == "" {
		return eris.New("test command is empty")
	}

	seen := make(map[string]bool, len(s.Variants))
	for i, v := range s.Variants {
		switch {
		case v.Name == "":
			return eris.Errorf("variant #%d has no name", i+1)
		case v.Name == "." || v.Name == "..":
			return eris.Errorf("variant name %q is not a directory name", v.Name)
		case strings.ContainsAny(v.Name, `/\`):
			return eris.Errorf("variant name %q contains a path separator", v.Name)
		case seen[v.Name]:
			return eris.Errorf("variant %q declared twice", v.Name)
		}
		seen[v.Name] = true

		for _, def := range v.Defines {
			key, _, ok := strings.Cut(def, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return eris.Errorf("variant %q: define %q is not KEY=VALUE", v.Name, def)
			}
		}
	}
	return nil
}

// Dir returns the output directory of v.
func (s *Set) Dir(v Variant) string {
	return filepath.Join(s.Root, v.Name)
}

// Dirs returns the output directory of every variant, in order.
func (s *Set) Dirs() []string {
	dirs := make([]string, 0, len(s.Variants))
	for _, v := range s.Variants {
		dirs = append(dirs, s.Dir(v))
	}
	return dirs
}

// Lookup finds a variant by name.
func (s *Set) Lookup(name string) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Marshal encodes the set as YAML, the format Load accepts.
func (s *Set) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, eris.Wrap(err, "failed to encode variant set")
	}
	if err := enc.Close(); err != nil {
		return nil, eris.Wrap(err, "failed to encode variant set")
	}
	return buf.Bytes(), nil
}
