package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// evidenceIDPattern matches identifiers issued by the registry (E001, E1234)
var evidenceIDPattern = regexp.MustCompile(`^E(\d{3,})$`)

// EvidenceRecord is a registered disk or file-system image
type EvidenceRecord struct {
	ID           string    `json:"evidence_id"`
	Path         string    `json:"path"` // Absolute location of the image, immutable
	Open         bool      `json:"open"`
	RegisteredAt time.Time `json:"registered_at"`
	SHA512       string    `json:"sha512,omitempty"` // Set when the image came through acquisition
}

// FormatEvidenceID renders the n-th evidence identifier (1 -> E001)
func FormatEvidenceID(n int) string {
	return fmt.Sprintf("E%03d", n)
}

// IsEvidenceID reports whether id has the registry's identifier shape
func IsEvidenceID(id string) bool {
	return evidenceIDPattern.MatchString(id)
}

// ParseEvidenceID extracts the sequence number from an evidence identifier
func ParseEvidenceID(id string) (int, error) {
	matches := evidenceIDPattern.FindStringSubmatch(id)
	if matches == nil {
		return 0, fmt.Errorf("invalid evidence ID: %s", id)
	}
	return strconv.Atoi(matches[1])
}

// SortEvidence sorts records by their sequence number
func SortEvidence(records []EvidenceRecord) {
	SortBy(records, func(r EvidenceRecord) int {
		n, _ := ParseEvidenceID(r.ID)
		return n
	})
}
