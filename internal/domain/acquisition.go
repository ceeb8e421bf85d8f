package domain

// Acquisition is an evidence image copied into the upload directory
type Acquisition struct {
	Path        string `json:"path"`
	Source      string `json:"source"` // Reference the image was fetched from
	SHA512      string `json:"sha512"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
