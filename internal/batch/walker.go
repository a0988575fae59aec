package batch

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// File is one input found under the input root.
type File struct {
	FullPath     string `json:"fullPath"`
	RelativePath string `json:"relativePath"`
	FileName     string `json:"fileName"`
	// Directory is the slash separated directory relative to the root, empty
	// for files at the root.
	Directory string `json:"directory"`
}

// BaseName is the file name without extension.
func (f File) BaseName() string {
	return strings.TrimSuffix(f.FileName, filepath.Ext(f.FileName))
}

// Location is the logical location "dir/BaseName" used for import paths.
func (f File) Location() string {
	if f.Directory == "" {
		return f.BaseName()
	}
	return f.Directory + "/" + f.BaseName()
}

// NewFile describes path relative to root. path must lie under root.
func NewFile(root, path string) (File, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return File{}, errors.Wrapf(err, "relative path of %s", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return File{}, errors.Newf("%s is outside %s", path, root)
	}
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		dir = ""
	}
	return File{
		FullPath:     path,
		RelativePath: filepath.ToSlash(rel),
		FileName:     filepath.Base(path),
		Directory:    dir,
	}, nil
}

// Accepts reports whether a file name passes the extension and skip
// filters.
func (o WalkOptions) Accepts(name string) bool {
	if !hasExtension(name, o.Extensions) {
		return false
	}
	return o.SkipPattern == "" || !strings.Contains(strings.ToLower(name), strings.ToLower(o.SkipPattern))
}

// WalkOptions filters the walk.
type WalkOptions struct {
	// Extensions are the accepted file extensions, with the dot.
	Extensions []string
	// SkipPattern drops files whose lower-cased name contains it. Empty
	// keeps every file.
	SkipPattern string
}

// Walk lists every matching file under root, recursively, sorted by relative
// path.
func Walk(root string, opts WalkOptions) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !opts.Accepts(d.Name()) {
			return nil
		}
		f, err := NewFile(root, path)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
