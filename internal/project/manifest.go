// Package project reads the lyt packaging metadata (lyt.toml or lyt.yaml):
// the route module glob used by code generation and the server and logging
// sections used as configuration defaults.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	lyterrors "github.com/lytical/app/internal/errors"
	"github.com/lytical/app/internal/logging"
)

// ManifestFiles lists the file names searched for, in order of preference.
var ManifestFiles = []string{"lyt.toml", "lyt.yaml", "lyt.yml"}

const (
	// DefaultModules is the module glob used when the manifest declares none.
	DefaultModules = "internal/routes/**/*.go"

	// DefaultOutput is where the generated module list is written.
	DefaultOutput = "lyt_modules_gen.go"
)

// Manifest is the decoded packaging metadata.
type Manifest struct {
	Project ProjectSection `toml:"project" yaml:"project"`
	Server  ServerSection  `toml:"server" yaml:"server"`
	Logging logging.Config `toml:"logging" yaml:"logging"`

	path string
}

// ProjectSection declares the route module entry points.
type ProjectSection struct {
	Name    string `toml:"name" yaml:"name"`
	Version string `toml:"version" yaml:"version"`

	// Modules is a doublestar glob, relative to the manifest directory,
	// matching the Go files whose packages register route modules.
	Modules string `toml:"modules" yaml:"modules"`

	// Output is the generated file, relative to the manifest directory.
	Output string `toml:"output" yaml:"output"`

	// Package is the package name of the generated file.
	Package string `toml:"package" yaml:"package"`
}

// ServerSection holds server defaults; environment variables override them.
type ServerSection struct {
	Hostname        string `toml:"hostname" yaml:"hostname"`
	Port            int    `toml:"port" yaml:"port"`
	Backlog         int    `toml:"backlog" yaml:"backlog"`
	Prefix          string `toml:"prefix" yaml:"prefix"`
	ShutdownTimeout string `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Load reads the manifest at path. The format is chosen by extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lyterrors.WrapFileSystemError("read", path, err)
	}

	m := &Manifest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(m)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(m)
	default:
		return nil, lyterrors.ConfigurationError(path, "unsupported manifest format")
	}
	if err != nil {
		return nil, lyterrors.WrapConfigurationError(path, "parse", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, lyterrors.WrapFileSystemError("resolve", path, err)
	}
	m.path = abs
	m.loadDefaults()
	return m, nil
}

// Find looks for a manifest in dir and its parents.
func Find(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", lyterrors.WrapFileSystemError("resolve", dir, err)
	}

	for {
		for _, name := range ManifestFiles {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", lyterrors.ConfigurationError("manifest", fmt.Sprintf("none of %s found from %s", strings.Join(ManifestFiles, ", "), dir))
}

// Path returns the absolute path the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// Dir returns the directory globs and outputs are resolved against.
func (m *Manifest) Dir() string {
	if m.path == "" {
		return "."
	}
	return filepath.Dir(m.path)
}

// OutputPath returns the absolute path of the generated module list.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Project.Output) {
		return m.Project.Output
	}
	return filepath.Join(m.Dir(), m.Project.Output)
}

func (m *Manifest) loadDefaults() {
	if m.Project.Modules == "" {
		m.Project.Modules = DefaultModules
	}
	if m.Project.Output == "" {
		m.Project.Output = DefaultOutput
	}
	if m.Project.Package == "" {
		m.Project.Package = "main"
	}
}
