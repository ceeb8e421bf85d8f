package domain

// Partition is one volume located in an image's partition table
type Partition struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	StartOffset int64  `json:"start_offset"` // Sectors from image start
	Size        int64  `json:"size"`         // Sectors
}

// Timestamps holds the four MAC(B) times of an entry, pre-rendered in UTC
type Timestamps struct {
	Accessed string `json:"accessed"`
	Modified string `json:"modified"`
	Created  string `json:"created"`
	Changed  string `json:"changed"`
}

// DirectoryEntry is one live file or directory returned by a listing
type DirectoryEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"is_directory"`
	InodeNumber uint64 `json:"inode_number"`
	Size        string `json:"size"` // Human readable, e.g. "1.2 KB"
	Timestamps
}

// CarvedFile is content recovered by signature analysis rather than from
// file-system metadata
type CarvedFile struct {
	DirectoryEntry
	Path        string `json:"path"`
	Type        string `json:"type"`
	Extension   string `json:"extension"`
	Description string `json:"description"`
	Offset      int64  `json:"offset"` // Byte offset of the header from the start of the image, -1 when unknown
}

// SearchResult is a keyword match. InodeItem may name an inode ("12348",
// "4-128-4") or a raw location ("offset:1048576") that no inode owns.
type SearchResult struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      string `json:"size"`
	InodeItem string `json:"inode_item"`
	Timestamps
}

// FileType is a best-effort content classification
type FileType struct {
	Type        string `json:"type"`
	Extension   string `json:"extension"`
	Description string `json:"description"`
}

// UnknownFileType is returned when content cannot be classified
var UnknownFileType = FileType{
	Type:        "unknown",
	Extension:   "bin",
	Description: "Unknown Data",
}

// FileMetadata describes content read by inode
type FileMetadata struct {
	Inode uint64 `json:"inode"`
	Name  string `json:"name,omitempty"`
	Size  int64  `json:"size"`
}

// FileContent is the result of reading one inode
type FileContent struct {
	Data     []byte
	Metadata FileMetadata
}
