// Package verify parses generated TypeScript with tree-sitter and checks it
// against the Java input it came from.
package verify

import (
	"context"
	"os"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/pkg/treesitter"
)

// Problems reported per file.
const (
	ProblemSyntax       = "output does not parse"
	ProblemNoExport     = "output declares nothing"
	ProblemNameMismatch = "output name differs from input"
)

// FileCheck is the result for one input.
type FileCheck struct {
	Input       string                  `json:"input"`
	Output      string                  `json:"output"`
	Expected    string                  `json:"expected,omitempty"`
	Found       []string                `json:"found,omitempty"`
	Diagnostics []treesitter.Diagnostic `json:"diagnostics,omitempty"`
	// InputErrors is set when the Java input itself has syntax errors.
	InputErrors bool   `json:"inputErrors,omitempty"`
	Problem     string `json:"problem,omitempty"`
}

// Report summarises a verification pass.
type Report struct {
	Checked int         `json:"checked"`
	Passed  int         `json:"passed"`
	Missing int         `json:"missing"` // inputs without an output
	Failed  []FileCheck `json:"failed,omitempty"`
}

// OK reports whether every existing output passed.
func (r *Report) OK() bool { return len(r.Failed) == 0 }

// Run checks the output of every input of runner.
func Run(ctx context.Context, runner *batch.Runner) (*Report, error) {
	if !treesitter.Available() {
		return nil, treesitter.ErrUnavailable
	}
	log := logging.Named("verify")

	files, err := batch.Walk(runner.Options().InputDir, runner.WalkOptions())
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, batch.ErrNoInputs
	}

	report := &Report{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := runner.OutputPath(f)
		tsSource, err := os.ReadFile(out)
		if errors.Is(err, os.ErrNotExist) {
			report.Missing++
			continue
		}
		if err != nil {
			return report, errors.Wrapf(err, "reading %s", out)
		}
		javaSource, err := os.ReadFile(f.FullPath)
		if err != nil {
			return report, errors.Wrapf(err, "reading %s", f.RelativePath)
		}

		check, err := CheckPair(ctx, javaSource, tsSource)
		if err != nil {
			return report, errors.Wrapf(err, "checking %s", f.RelativePath)
		}
		check.Input = f.RelativePath
		check.Output = out
		report.Checked++
		if check.Problem != "" {
			log.Debugw("Verification failed", "input", check.Input, "problem", check.Problem)
			report.Failed = append(report.Failed, *check)
			continue
		}
		report.Passed++
	}
	return report, nil
}

// CheckPair parses one Java input and its TypeScript output. The expected
// name is the last class or enum of the input; an output carrying only a
// comment has no declaration and fails.
func CheckPair(ctx context.Context, javaSource, tsSource []byte) (*FileCheck, error) {
	in, err := treesitter.Check(ctx, treesitter.LangJava, javaSource)
	if err != nil {
		return nil, err
	}
	out, err := treesitter.Check(ctx, treesitter.LangTypeScript, tsSource)
	if err != nil {
		return nil, err
	}

	check := &FileCheck{
		Found:       out.Names(),
		Diagnostics: out.Diagnostics,
		InputErrors: !in.OK(),
	}
	for _, d := range in.Declarations {
		if d.Kind == "class" || d.Kind == "enum" {
			check.Expected = d.Name
		}
	}

	switch {
	case !out.OK():
		check.Problem = ProblemSyntax
	case len(check.Found) == 0:
		check.Problem = ProblemNoExport
	case check.Expected != "" && !slices.Contains(check.Found, check.Expected):
		check.Problem = ProblemNameMismatch
	}
	return check, nil
}
