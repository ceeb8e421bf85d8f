package application

import "forensdesk/internal/domain"

// Re-export domain types for use by adapters
type (
	EvidenceRecord = domain.EvidenceRecord
	Partition      = domain.Partition
	DirectoryEntry = domain.DirectoryEntry
	CarvedFile     = domain.CarvedFile
	SearchResult   = domain.SearchResult
	FileType       = domain.FileType
	FileContent    = domain.FileContent
	ContentView    = domain.ContentView
	AuditEvent     = domain.AuditEvent
)

// CarveAll is the wildcard file type accepted by Carve
const CarveAll = "all"
