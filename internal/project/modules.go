package project

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/modfile"

	lyterrors "github.com/lytical/app/internal/errors"
)

// ExpandModules resolves the module glob against the manifest directory and
// returns the matching Go source files, relative and slash-separated, in
// lexical order. Test files are skipped.
func (m *Manifest) ExpandModules() ([]string, error) {
	pattern := filepath.ToSlash(m.Project.Modules)
	if !doublestar.ValidatePattern(pattern) {
		return nil, lyterrors.ConfigurationError("project.modules", "invalid glob "+pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(m.Dir()), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, lyterrors.WrapFileSystemError("glob", pattern, err)
	}

	files := matches[:0]
	for _, match := range matches {
		if !strings.HasSuffix(match, ".go") || strings.HasSuffix(match, "_test.go") {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

// PackageDirs returns the distinct directories of files in first-seen order.
func PackageDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		dir := path.Dir(filepath.ToSlash(f))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// GoModule describes the Go module enclosing a directory.
type GoModule struct {
	Path string // module path declared in go.mod
	Dir  string // absolute directory containing go.mod
}

// FindGoModule searches for go.mod starting from dir and walking up.
func FindGoModule(dir string) (*GoModule, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, lyterrors.WrapFileSystemError("resolve", dir, err)
	}

	for {
		goModPath := filepath.Join(current, "go.mod")
		data, err := os.ReadFile(goModPath)
		if err == nil {
			modFile, err := modfile.Parse(goModPath, data, nil)
			if err != nil {
				return nil, lyterrors.WrapConfigurationError(goModPath, "parse", err)
			}
			if modFile.Module == nil {
				return nil, lyterrors.ConfigurationError(goModPath, "no module declaration found")
			}
			return &GoModule{Path: modFile.Module.Mod.Path, Dir: current}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, lyterrors.ConfigurationError("go.mod", "not found from "+dir)
}

// ImportPath builds the import path of the package in dir.
func (g *GoModule) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", lyterrors.WrapFileSystemError("resolve", dir, err)
	}
	rel, err := filepath.Rel(g.Dir, abs)
	if err != nil {
		return "", lyterrors.WrapFileSystemError("relate", dir, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return g.Path, nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", lyterrors.ConfigurationError("project.modules", dir+" is outside module "+g.Path)
	}
	return g.Path + "/" + rel, nil
}
