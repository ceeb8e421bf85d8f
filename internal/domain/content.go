package domain

import (
	"encoding/hex"
	"unicode/utf8"
)

// HexPreviewLimit is how many leading bytes of binary content are shown as hex
const HexPreviewLimit = 1000

// ContentView is file content prepared for display
type ContentView struct {
	IsText   bool   `json:"is_text"`
	Content  string `json:"content"`
	FileSize int    `json:"file_size"`
}

// ClassifyContent decodes data as strict UTF-8. Valid input is returned as
// text; anything else is shown as the hex encoding of its first
// HexPreviewLimit bytes.
func ClassifyContent(data []byte) ContentView {
	if utf8.Valid(data) {
		return ContentView{
			IsText:   true,
			Content:  string(data),
			FileSize: len(data),
		}
	}

	preview := data
	if len(preview) > HexPreviewLimit {
		preview = preview[:HexPreviewLimit]
	}
	return ContentView{
		IsText:   false,
		Content:  hex.EncodeToString(preview),
		FileSize: len(data),
	}
}
