package media

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the container formats counted as course items.
var DefaultExtensions = []string{".mp4", ".mkv", ".mov", ".avi", ".webm"}

// ExtensionSet is an immutable, case-insensitive set of file extensions.
type ExtensionSet struct {
	exts map[string]bool
}

// NewExtensionSet normalizes exts to lower case with a leading dot.
// Blank entries are ignored.
func NewExtensionSet(exts []string) ExtensionSet {
	set := ExtensionSet{exts: make(map[string]bool, len(exts))}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set.exts[ext] = true
	}
	return set
}

func (s ExtensionSet) IsSupportedVideo(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return s.exts[ext]
}

func (s ExtensionSet) Len() int {
	return len(s.exts)
}
