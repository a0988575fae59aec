// Package importfix adds the missing supertype import to generated
// TypeScript files once every output of a run exists.
package importfix

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

// ErrNoOutputs is returned when the output root holds no .ts file.
var ErrNoOutputs = errors.New("no TypeScript files found to update imports")

var (
	interfacePattern = regexp.MustCompile(`export interface (\w+)`)
	extendsPattern   = regexp.MustCompile(`extends\s+(\w+)`)
)

// Report summarises one pass.
type Report struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	TotalFiles   int    `json:"totalFiles"`
	UpdatedFiles int    `json:"updatedFiles"`
	// ProcessingTime is in milliseconds.
	ProcessingTime int64 `json:"processingTime"`
	// Updated lists the relative paths that gained an import.
	Updated []string `json:"updated,omitempty"`
}

type target struct {
	fileName  string
	directory string
}

// Run scans every .ts file under root, indexes the first exported interface
// of each, and prepends an import for the supertype of every file that
// extends an indexed interface without importing it. Unreadable or
// unwritable files are logged and skipped.
func Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	log := logging.Named("importfix")
	_, span := observability.StartImportFixSpan(ctx, root)
	defer span.End()

	files, err := batch.Walk(root, batch.WalkOptions{Extensions: []string{".ts"}})
	if err != nil {
		observability.RecordError(span, err)
		return &Report{Error: err.Error()}, err
	}
	if len(files) == 0 {
		return &Report{Error: ErrNoOutputs.Error()}, ErrNoOutputs
	}

	contents := make(map[string]string, len(files))
	index := make(map[string]target)
	for _, f := range files {
		data, err := os.ReadFile(f.FullPath)
		if err != nil {
			log.Warnw("reading output failed", "file", f.RelativePath, "error", err)
			continue
		}
		content := string(data)
		contents[f.RelativePath] = content
		if m := interfacePattern.FindStringSubmatch(content); m != nil {
			index[m[1]] = target{fileName: f.BaseName(), directory: f.Directory}
		}
	}
	log.Infow("interfaces indexed", "files", len(files), "interfaces", len(index))

	report := &Report{TotalFiles: len(files)}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			observability.RecordError(span, err)
			return report, errors.Wrap(err, "import update cancelled")
		}
		content, ok := contents[f.RelativePath]
		if !ok {
			continue
		}
		m := extendsPattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		parent := m[1]
		info, ok := index[parent]
		if !ok || strings.Contains(content, "import { "+parent+" }") {
			continue
		}
		line := fmt.Sprintf("import { %s } from '%s';\n\n", parent, ImportPath(f.Directory, info.directory, info.fileName))
		if err := os.WriteFile(f.FullPath, []byte(line+content), 0o644); err != nil {
			log.Warnw("writing output failed", "file", f.RelativePath, "error", err)
			continue
		}
		report.UpdatedFiles++
		report.Updated = append(report.Updated, f.RelativePath)
	}

	elapsed := time.Since(start)
	report.Success = true
	report.ProcessingTime = elapsed.Milliseconds()
	report.Message = fmt.Sprintf("Updated imports in %d/%d TypeScript files", report.UpdatedFiles, report.TotalFiles)
	observability.RecordImportFixResult(span, report.TotalFiles, report.UpdatedFiles)
	log.Infow("import update completed", "updated", report.UpdatedFiles, "total", report.TotalFiles, "elapsed", elapsed)
	return report, nil
}

// ImportPath is the module path from a file in dir to fileName in
// targetDir. Directories are slash separated and empty at the root.
func ImportPath(dir, targetDir, fileName string) string {
	switch {
	case dir == targetDir:
		return "./" + fileName
	case dir == "":
		return "./" + targetDir + "/" + fileName
	}
	up := strings.Repeat("../", strings.Count(dir, "/")+1)
	if targetDir == "" {
		return up + fileName
	}
	return up + targetDir + "/" + fileName
}
