package batch

import "github.com/cockroachdb/errors"

// Mode selects the conversion path and batching of a run.
type Mode struct {
	Name string
	// Fast selects the single pass converter; otherwise the full one.
	Fast bool
	// WithLocation passes "dir/BaseName" as location hint.
	WithLocation bool
	// Size is the number of files converted concurrently per batch.
	Size int
	// MinSize is the trimmed input length below which a file is "Too small".
	MinSize int
	// Note is carried into the run summary.
	Note string
}

var modes = map[string]Mode{
	"all": {
		Name: "all", Fast: true, Size: 25, MinSize: 20,
		Note: "Run update-imports separately if needed",
	},
	"simple": {
		Name: "simple", Fast: true, Size: 15, MinSize: 50,
		Note: "Simple mode with the fast converter",
	},
	"smart": {
		Name: "smart", Fast: true, WithLocation: true, Size: 20, MinSize: 20,
		Note: "Smart imports with exact relative paths",
	},
	"full": {
		Name: "full", WithLocation: true, Size: 20, MinSize: 20,
		Note: "Full extraction with resolved imports",
	},
}

// LookupMode returns the named mode.
func LookupMode(name string) (Mode, error) {
	m, ok := modes[name]
	if !ok {
		return Mode{}, errors.WithHint(
			errors.Newf("unknown batch mode %q", name),
			"valid modes are all, simple, smart and full",
		)
	}
	return m, nil
}

// ModeNames lists the modes in a stable order.
func ModeNames() []string {
	return []string{"all", "simple", "smart", "full"}
}
