package domain

import (
	"path/filepath"
	"strings"
)

// AllowedEvidenceExtensions lists the image formats accepted at upload
var AllowedEvidenceExtensions = []string{
	".e01", ".s01", ".l01", ".raw", ".img", ".dd", ".iso",
	".ad1", ".001", ".ex01", ".dmg", ".sparse", ".sparseimage",
}

// IsAllowedEvidenceFile reports whether name carries an accepted image
// extension. The comparison ignores case.
func IsAllowedEvidenceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedEvidenceExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SafeFileName reduces an uploaded file name to a flat name that cannot
// escape the upload directory
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	safe := strings.TrimLeft(b.String(), "._")
	if safe == "" {
		return "evidence"
	}
	return safe
}
