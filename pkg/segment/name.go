package segment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

// DefaultExtension is the file extension of segment files.
const DefaultExtension = ".seg"

// NewPath returns a fresh segment id and the file path for it inside dir.
// Ids sort by creation time.
func NewPath(dir, ext string) (ksuid.KSUID, string) {
	id := ksuid.New()
	return id, filepath.Join(dir, FileName(id, ext))
}

// FileName returns the file name of segment id.
func FileName(id ksuid.KSUID, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return id.String() + ext
}

// ParseFileName extracts the segment id from a file name or path.
func ParseFileName(name string) (ksuid.KSUID, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	id, err := ksuid.Parse(base)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("segment: invalid file name %q: %w", name, err)
	}
	return id, nil
}
