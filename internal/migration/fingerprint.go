package migration

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Source is one input file as seen by the incremental runner. Path is
// relative to the input root.
type Source struct {
	Path    string
	Content []byte
}

// Fingerprint is a content hash of an input file combined with the settings
// it was converted under.
type Fingerprint struct {
	// FileHash is the xxhash of the raw file content.
	FileHash string `json:"file_hash"`
	// CompositeHash combines FileHash and the run settings. If it has not
	// changed since the last run the file can be skipped.
	CompositeHash string `json:"composite_hash"`
}

// ComputeFingerprints fingerprints every source. settings identifies the
// conversion mode and registry; changing it invalidates every file.
func ComputeFingerprints(files []Source, settings string) map[string]*Fingerprint {
	result := make(map[string]*Fingerprint, len(files))
	for _, f := range files {
		fileHash := hashBytes(f.Content)
		result[f.Path] = &Fingerprint{
			FileHash:      fileHash,
			CompositeHash: computeComposite(fileHash, settings),
		}
	}
	return result
}

func hashBytes(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func computeComposite(fileHash, settings string) string {
	return strconv.FormatUint(xxhash.Sum64String(fileHash+"|"+settings), 16)
}
