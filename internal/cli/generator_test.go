package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytical/app/internal/utils"
)

// writeProject lays out a module with two route packages and a manifest.
func writeProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"go.mod":                            "module github.com/example/shop\n\ngo 1.25\n",
		"lyt.toml":                          manifest,
		"internal/routes/orders/orders.go":  "package orders\n",
		"internal/routes/orders/extra.go":   "package orders\n",
		"internal/routes/orders/x_test.go":  "package orders\n",
		"internal/routes/users/v1/users.go": "package v1\n",
		"internal/routes/README.md":         "not go\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const defaultManifest = `
[project]
modules = "internal/routes/**/*.go"
output = "cmd/shop/lyt_modules_gen.go"
package = "main"
`

func TestGenerator_Generate(t *testing.T) {
	dir := writeProject(t, defaultManifest)

	g := NewGenerator(nil)
	require.NoError(t, g.Generate(Config{Dir: dir}))

	out := filepath.Join(dir, "cmd", "shop", "lyt_modules_gen.go")
	src, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(src), GeneratedHeader+"\n"))
	assert.Contains(t, string(src), "// Source: internal/routes/**/*.go")
	assert.Contains(t, string(src), "package main")

	orders := strings.Index(string(src), `_ "github.com/example/shop/internal/routes/orders"`)
	users := strings.Index(string(src), `_ "github.com/example/shop/internal/routes/users/v1"`)
	assert.Greater(t, orders, 0)
	assert.Greater(t, users, orders, "imports keep glob order")

	summary := g.GetSummary()
	assert.Equal(t, 3, summary.FilesMatched)
	assert.Equal(t, []string{
		"github.com/example/shop/internal/routes/orders",
		"github.com/example/shop/internal/routes/users/v1",
	}, summary.Packages)
	assert.Equal(t, out, summary.OutputFile)
}

func TestGenerator_CustomModule(t *testing.T) {
	dir := writeProject(t, defaultManifest)

	g := NewGenerator(nil)
	require.NoError(t, g.Generate(Config{ManifestPath: filepath.Join(dir, "lyt.toml"), ModuleName: "example.org/renamed"}))

	src, err := os.ReadFile(filepath.Join(dir, "cmd", "shop", "lyt_modules_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `_ "example.org/renamed/internal/routes/orders"`)
}

func TestGenerator_SkipsOwnPackage(t *testing.T) {
	dir := writeProject(t, `
[project]
modules = "internal/routes/**/*.go"
output = "internal/routes/orders/lyt_modules_gen.go"
package = "orders"
`)

	g := NewGenerator(nil)
	require.NoError(t, g.Generate(Config{Dir: dir}))

	summary := g.GetSummary()
	assert.Equal(t, []string{"internal/routes/orders"}, summary.Skipped)
	assert.Equal(t, []string{"github.com/example/shop/internal/routes/users/v1"}, summary.Packages)
}

func TestGenerator_NoMatches(t *testing.T) {
	dir := writeProject(t, `
[project]
modules = "internal/handlers/**/*.go"
`)

	var out bytes.Buffer
	diag := utils.NewDiagnosticSystem(utils.DiagnosticWarn)
	diag.SetOutput(&out, &out)

	g := NewGenerator(diag)
	require.NoError(t, g.Generate(Config{Dir: dir}))
	assert.Contains(t, out.String(), "no Go files match")

	src, err := os.ReadFile(filepath.Join(dir, "lyt_modules_gen.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(src), "import")
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		err := NewGenerator(nil).Generate(Config{ManifestPath: filepath.Join(t.TempDir(), "lyt.toml")})
		assert.Error(t, err)
	})

	t.Run("invalid glob", func(t *testing.T) {
		dir := writeProject(t, "[project]\nmodules = \"internal/[routes\"\n")
		assert.Error(t, NewGenerator(nil).Generate(Config{Dir: dir}))
	})

	t.Run("no go.mod", func(t *testing.T) {
		dir := writeProject(t, defaultManifest)
		require.NoError(t, os.Remove(filepath.Join(dir, "go.mod")))
		assert.Error(t, NewGenerator(nil).Generate(Config{Dir: dir}))
	})
}

func TestRenderModuleList(t *testing.T) {
	src, err := RenderModuleList("main", "routes/*.go", []string{"example.com/a", "example.com/b"})
	require.NoError(t, err)

	expected := GeneratedHeader + `
// Source: routes/*.go

package main

import (
	_ "example.com/a"
	_ "example.com/b"
)
`
	assert.Equal(t, expected, string(src))
}
