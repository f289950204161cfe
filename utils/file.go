package utils

import (
	"path/filepath"
	"sort"
	"strings"
)

var supportedExtensions = map[string]bool{
	".pdf": true,
	".csv": true,
	".txt": true,
	".md":  true,
}

// IsSupportedFile reports whether path has a document extension the
// ingest pipeline can load.
func IsSupportedFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists the loadable extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// SourceName returns the citation identifier for a document path: its
// base file name, so "knowledge_source/diabetes_common.pdf" becomes
// "diabetes_common.pdf".
func SourceName(path string) string {
	return filepath.Base(path)
}
