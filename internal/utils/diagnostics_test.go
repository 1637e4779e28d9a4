package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBuffered(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	d, out, errOut := newBuffered(DiagnosticInfo)

	d.Error("broken %d", 1)
	d.Warn("careful")
	d.Info("note")
	d.Success("done")
	d.Verbose("hidden")
	d.Debug("hidden too")

	assert.Equal(t, "[ERROR] broken 1\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n[INFO] note\n[SUCCESS] done\n", out.String())
}

func TestDiagnosticSystem_Quiet(t *testing.T) {
	d, out, errOut := newBuffered(DiagnosticError)

	d.Section("title")
	d.Info("note")
	d.Summary("summary", map[string]any{"a": 1})
	d.Error("only this")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "only this")
}

func TestDiagnosticSystem_IndentAndList(t *testing.T) {
	d, out, _ := newBuffered(DiagnosticInfo)

	d.List("top")
	d.Indent()
	d.List("nested %s", "item")
	d.Unindent()
	d.Unindent()
	d.List("back")

	assert.Equal(t, "- top\n  - nested item\n- back\n", out.String())
}

func TestDiagnosticSystem_Progress(t *testing.T) {
	d, out, _ := newBuffered(DiagnosticInfo)

	d.StartProgress("Loading")
	d.EndProgress(true, "3 files")
	d.StartProgress("Saving")
	d.EndProgress(false, "")
	d.EndProgress(true, "no step")

	assert.Equal(t, "✓ Loading (3 files)\n✗ Saving\n", out.String())
}

func TestDiagnosticSystem_QuietProgressReportsFailures(t *testing.T) {
	d, out, _ := newBuffered(DiagnosticError)

	d.StartProgress("Loading")
	d.EndProgress(true, "")
	d.StartProgress("Parsing")
	d.EndProgress(false, "bad input")

	assert.Equal(t, "✗ Parsing (bad input)\n", out.String())
}

func TestDiagnosticSystem_SummarySortsKeys(t *testing.T) {
	d, out, _ := newBuffered(DiagnosticInfo)

	d.Summary("Done", map[string]any{"b": 2, "a": 1})

	assert.Equal(t, "\nDone\n   a: 1\n   b: 2\n\n", out.String())
}

func TestShouldUseColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, shouldUseColors())

	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, shouldUseColors())

	t.Setenv("FORCE_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, shouldUseColors())
}
