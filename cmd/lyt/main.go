package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lytical/app/internal/cli"
	"github.com/lytical/app/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: lyt gen [options]\n\n")
	fmt.Fprintf(w, "lyt module list generator\n")
	fmt.Fprintf(w, "Expands the [project] modules glob of lyt.toml and writes a Go file that\n")
	fmt.Fprintf(w, "blank-imports every matched package, so that their init functions register\n")
	fmt.Fprintf(w, "their routes with lyt.RegisterModule.\n\n")
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  lyt gen                          # use lyt.toml found from the current directory\n")
	fmt.Fprintf(w, "  lyt gen -manifest deploy/lyt.yaml\n")
	fmt.Fprintf(w, "  lyt gen -clean                   # remove the generated file\n")
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "gen" {
		if len(args) > 0 && (args[0] == "-help" || args[0] == "--help" || args[0] == "-h") {
			usage(stdout)
			return 0
		}
		fmt.Fprintf(stderr, "Error: unknown or missing command\n\n")
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet("lyt gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		manifestFlag = fs.String("manifest", "", "Manifest to read (defaults to lyt.toml, lyt.yaml or lyt.yml found from the current directory)")
		moduleFlag   = fs.String("module", "", "Custom module name for imports (defaults to go.mod module)")
		verboseFlag  = fs.Bool("verbose", false, "Enable verbose output")
		quietFlag    = fs.Bool("quiet", false, "Only show errors")
		cleanFlag    = fs.Bool("clean", false, "Delete the generated module list")
	)
	fs.Usage = func() {
		usage(stderr)
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if stdout != os.Stdout || stderr != os.Stderr {
		diagnostics.SetOutput(stdout, stderr)
	}

	cfg := cli.Config{
		ManifestPath: *manifestFlag,
		ModuleName:   *moduleFlag,
		Verbose:      *verboseFlag,
	}

	diagnostics.Section("module list generator")

	if *cleanFlag {
		removed, err := cli.NewCleaner().Clean(cfg)
		if err != nil {
			diagnostics.Error("Clean operation failed: %v", err)
			return 1
		}
		if removed == "" {
			diagnostics.Info("Nothing to clean")
		} else {
			diagnostics.Success("Removed %s", removed)
		}
		return 0
	}

	generator := cli.NewGenerator(diagnostics)
	if err := generator.Generate(cfg); err != nil {
		diagnostics.Error("Generation failed: %v", err)
		return 1
	}

	summary := generator.GetSummary()
	diagnostics.Summary("Generation complete!", map[string]any{
		"Files matched":    summary.FilesMatched,
		"Packages":         len(summary.Packages),
		"Packages skipped": len(summary.Skipped),
		"Output":           summary.OutputFile,
	})
	if *verboseFlag {
		diagnostics.Subsection("Imported packages")
		for _, p := range summary.Packages {
			diagnostics.List("%s", p)
		}
	}
	return 0
}
