package cli

// Config holds the configuration for the CLI generator
type Config struct {
	// ManifestPath is the lyt.toml/lyt.yaml to read.
	// If empty, it is searched for from Dir upwards.
	ManifestPath string

	// Dir is where the manifest search starts (default: current directory)
	Dir string

	// ModuleName overrides the go.mod module path used for imports
	ModuleName string

	// Verbose enables detailed logging
	Verbose bool
}
