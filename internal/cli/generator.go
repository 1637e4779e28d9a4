package cli

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
	"time"

	lyterrors "github.com/lytical/app/internal/errors"
	"github.com/lytical/app/internal/project"
	"github.com/lytical/app/internal/utils"
)

// GeneratedHeader is the first line of every generated module list.
const GeneratedHeader = "// Code generated by lyt gen. DO NOT EDIT."

var moduleListTemplate = template.Must(template.New("modules").Parse(GeneratedHeader + `
// Source: {{.Pattern}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	_ "{{.}}"
{{- end}}
)
{{end}}`))

type moduleList struct {
	Package string
	Pattern string
	Imports []string
}

// GenerationSummary tracks what a generation run produced
type GenerationSummary struct {
	FilesMatched int
	Packages     []string
	Skipped      []string
	OutputFile   string
	Duration     time.Duration
}

// Generator writes the module list: a Go file of blank imports, one per
// package matched by the manifest's module glob, in glob order. Importing
// the list runs each package's init, which registers its lyt modules.
type Generator struct {
	diagnostics  *utils.DiagnosticSystem
	customModule string
	summary      GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Generator{diagnostics: diagnostics}
}

// SetCustomModule sets a custom module name for import resolution
func (g *Generator) SetCustomModule(moduleName string) {
	g.customModule = moduleName
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Generate runs one generation
func (g *Generator) Generate(cfg Config) error {
	start := time.Now()
	g.summary = GenerationSummary{}
	if cfg.ModuleName != "" {
		g.customModule = cfg.ModuleName
	}

	g.diagnostics.StartProgress("Loading manifest")
	m, err := loadManifest(cfg)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, m.Path())

	g.diagnostics.StartProgress("Expanding " + m.Project.Modules)
	files, err := m.ExpandModules()
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.summary.FilesMatched = len(files)
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d files", len(files)))
	if len(files) == 0 {
		g.diagnostics.Warn("no Go files match %s", m.Project.Modules)
	}

	g.diagnostics.StartProgress("Resolving import paths")
	imports, err := g.resolveImports(m, files)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, "")

	src, err := RenderModuleList(m.Project.Package, m.Project.Modules, imports)
	if err != nil {
		return lyterrors.WrapGenerateError(m.OutputPath(), err)
	}

	out := m.OutputPath()
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return lyterrors.WrapFileSystemError("mkdir", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return lyterrors.WrapFileSystemError("write", out, err)
	}

	g.summary.Packages = imports
	g.summary.OutputFile = out
	g.summary.Duration = time.Since(start)
	g.diagnostics.Verbose("wrote %s", out)
	return nil
}

func (g *Generator) resolveImports(m *project.Manifest, files []string) ([]string, error) {
	mod, err := project.FindGoModule(m.Dir())
	if err != nil {
		return nil, err
	}
	if g.customModule != "" {
		mod.Path = g.customModule
	}

	outDir, err := filepath.Abs(filepath.Dir(m.OutputPath()))
	if err != nil {
		return nil, lyterrors.WrapFileSystemError("resolve", m.OutputPath(), err)
	}

	var imports []string
	for _, dir := range project.PackageDirs(files) {
		abs, err := filepath.Abs(filepath.Join(m.Dir(), filepath.FromSlash(dir)))
		if err != nil {
			return nil, lyterrors.WrapFileSystemError("resolve", dir, err)
		}
		// the output package cannot import itself
		if abs == outDir {
			g.summary.Skipped = append(g.summary.Skipped, dir)
			g.diagnostics.Warn("skipping %s: it is the package of the generated file", dir)
			continue
		}

		importPath, err := mod.ImportPath(abs)
		if err != nil {
			return nil, err
		}
		g.diagnostics.Debug("%s -> %s", dir, importPath)
		imports = append(imports, importPath)
	}
	return imports, nil
}

// RenderModuleList renders and gofmts the module list source.
func RenderModuleList(pkg, pattern string, imports []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := moduleListTemplate.Execute(&buf, moduleList{Package: pkg, Pattern: pattern, Imports: imports}); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

func loadManifest(cfg Config) (*project.Manifest, error) {
	path := cfg.ManifestPath
	if path == "" {
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		found, err := project.Find(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	return project.Load(path)
}
