// Package filetype classifies content by magic bytes.
package filetype

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"forensdesk/internal/domain"
)

type kind struct {
	typ         string
	description string
}

var known = map[string]kind{
	"text/plain":         {"text", "Text File"},
	"text/html":          {"text", "HTML Document"},
	"text/xml":           {"text", "XML Document"},
	"application/json":   {"text", "JSON Document"},
	"image/jpeg":         {"image", "JPEG Image"},
	"image/png":          {"image", "PNG Image"},
	"image/gif":          {"image", "GIF Image"},
	"image/bmp":          {"image", "Bitmap Image"},
	"image/tiff":         {"image", "TIFF Image"},
	"application/pdf":    {"document", "PDF Document"},
	"application/msword": {"document", "Word Document"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {"document", "Word Document"},
	"application/zip":                               {"archive", "ZIP Archive"},
	"application/gzip":                              {"archive", "GZIP Archive"},
	"application/x-7z-compressed":                   {"archive", "7-Zip Archive"},
	"application/x-rar-compressed":                  {"archive", "RAR Archive"},
	"application/vnd.sqlite3":                       {"database", "SQLite Database"},
	"application/x-elf":                             {"executable", "ELF Executable"},
	"application/x-executable":                      {"executable", "ELF Executable"},
	"application/vnd.microsoft.portable-executable": {"executable", "PE Executable"},
	"application/x-msdownload":                      {"executable", "PE Executable"},
}

// Detect classifies data. Empty or unrecognized content yields
// domain.UnknownFileType.
func Detect(data []byte) domain.FileType {
	if len(data) == 0 {
		return domain.UnknownFileType
	}
	return fromMIME(mimetype.Detect(data))
}

// DetectReader classifies the head of r
func DetectReader(r io.Reader) (domain.FileType, string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return domain.UnknownFileType, "", err
	}
	return fromMIME(m), m.String(), nil
}

func fromMIME(m *mimetype.MIME) domain.FileType {
	base, _, _ := strings.Cut(m.String(), ";")
	base = strings.TrimSpace(base)
	ext := strings.TrimPrefix(m.Extension(), ".")

	if k, ok := known[base]; ok {
		return domain.FileType{Type: k.typ, Extension: ext, Description: k.description}
	}
	if base == "application/octet-stream" || ext == "" {
		return domain.UnknownFileType
	}

	typ, _, _ := strings.Cut(base, "/")
	if typ == "application" {
		typ = "binary"
	}
	return domain.FileType{Type: typ, Extension: ext, Description: base}
}

// Matches reports whether ft satisfies a carve or filter request. want may
// be "all", a category such as "image", or an extension such as "jpg".
func Matches(ft domain.FileType, want string) bool {
	want = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(want), "."))
	switch want {
	case "", "all":
		return true
	case ft.Type, ft.Extension:
		return true
	case "jpeg":
		return ft.Extension == "jpg"
	}
	return false
}
