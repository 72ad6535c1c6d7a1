// Package storage keeps worksheet files in the workspace directory.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/sunc/internal/models"
)

// Provider is the interface for workspace file operations. Paths are
// relative to the workspace root.
type Provider interface {
	// List returns metadata for every worksheet under dir.
	List(dir string) ([]models.WorksheetMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

// IsWorksheet reports whether name carries a worksheet extension. Hidden
// files, including in-flight temp files, are not worksheets.
func IsWorksheet(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
