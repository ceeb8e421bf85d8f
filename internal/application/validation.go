package application

import (
	"fmt"
	"strings"

	"forensdesk/internal/domain"
)

// fieldLabels are the human names of command fields in error messages
var fieldLabels = map[string]string{
	"evidenceID":  "evidence ID",
	"token":       "session token",
	"path":        "image path",
	"startOffset": "start offset",
	"fileType":    "file type",
	"ref":         "source reference",
	"run":         "run ID (evidence IDs restart in every run)",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateRequired rejects values that are empty once trimmed
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return invalid(field, "%s is required", label(field))
}

// ValidateEvidenceID checks that id has the registry's E001 shape
func ValidateEvidenceID(field, id string) error {
	if domain.IsEvidenceID(id) {
		return nil
	}
	return invalid(field, "expected %s like E001, got: %s", label(field), id)
}

// ValidateStartOffset rejects negative sector offsets
func ValidateStartOffset(offset int64) error {
	if offset >= 0 {
		return nil
	}
	return invalid("startOffset", "start offset must not be negative, got: %d", offset)
}

// ValidateEvidenceFile applies the upload extension allow-list
func ValidateEvidenceFile(field, name string) error {
	if domain.IsAllowedEvidenceFile(name) {
		return nil
	}
	return invalid(field, "unsupported evidence format: %s", name)
}
