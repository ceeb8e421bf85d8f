package carver

import (
	"bytes"
	"encoding/binary"
)

// Signature describes how to find one file format in raw bytes
type Signature struct {
	Name        string
	Type        string
	Extension   string
	Description string
	Header      []byte
	Footer      []byte // Optional; the match ends after the first footer
	MaxSize     int64

	// Size reads the length from the header when the format records it.
	// It returns 0 when the header is implausible and the hit should be
	// discarded.
	Size func(data []byte) int64
}

const mib = 1 << 20

// DefaultSignatures are the formats recognized out of the box
var DefaultSignatures = []Signature{
	{
		Name: "jpeg", Type: "image", Extension: "jpg", Description: "JPEG Image",
		Header: []byte{0xff, 0xd8, 0xff}, Footer: []byte{0xff, 0xd9}, MaxSize: 20 * mib,
	},
	{
		Name: "png", Type: "image", Extension: "png", Description: "PNG Image",
		Header:  []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
		Footer:  []byte{'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82},
		MaxSize: 20 * mib,
	},
	{
		Name: "gif", Type: "image", Extension: "gif", Description: "GIF Image",
		Header: []byte("GIF8"), Footer: []byte{0x00, 0x3b}, MaxSize: 10 * mib,
	},
	{
		Name: "bmp", Type: "image", Extension: "bmp", Description: "Bitmap Image",
		Header: []byte("BM"), MaxSize: 20 * mib, Size: bmpSize,
	},
	{
		Name: "pdf", Type: "document", Extension: "pdf", Description: "PDF Document",
		Header: []byte("%PDF-"), Footer: []byte("%%EOF"), MaxSize: 50 * mib,
	},
	{
		Name: "zip", Type: "archive", Extension: "zip", Description: "ZIP Archive",
		Header: []byte{'P', 'K', 0x03, 0x04}, Footer: []byte{'P', 'K', 0x05, 0x06}, MaxSize: 100 * mib,
	},
	{
		Name: "gzip", Type: "archive", Extension: "gz", Description: "GZIP Archive",
		Header: []byte{0x1f, 0x8b, 0x08}, MaxSize: 10 * mib,
	},
	{
		Name: "sqlite", Type: "database", Extension: "sqlite", Description: "SQLite Database",
		Header: []byte("SQLite format 3\x00"), MaxSize: 100 * mib, Size: sqliteSize,
	},
	{
		Name: "elf", Type: "executable", Extension: "elf", Description: "ELF Executable",
		Header: []byte{0x7f, 'E', 'L', 'F'}, MaxSize: 10 * mib,
	},
	{
		Name: "pe", Type: "executable", Extension: "exe", Description: "PE Executable",
		Header: []byte("MZ"), MaxSize: 10 * mib, Size: peSize,
	},
}

// zip end-of-central-directory record is 22 bytes including the signature
const zipEOCDTail = 18

func footerExtra(sig Signature) int64 {
	if sig.Name == "zip" {
		return zipEOCDTail
	}
	return 0
}

func bmpSize(data []byte) int64 {
	if len(data) < 26 {
		return 0
	}
	size := int64(binary.LittleEndian.Uint32(data[2:6]))
	reserved := binary.LittleEndian.Uint32(data[6:10])
	pixelOffset := int64(binary.LittleEndian.Uint32(data[10:14]))
	if reserved != 0 || size < 26 || pixelOffset >= size {
		return 0
	}
	return size
}

func sqliteSize(data []byte) int64 {
	if len(data) < 32 {
		return 0
	}
	pageSize := int64(binary.BigEndian.Uint16(data[16:18]))
	if pageSize == 1 {
		pageSize = 65536
	}
	if pageSize < 512 || pageSize&(pageSize-1) != 0 {
		return 0
	}
	pages := int64(binary.BigEndian.Uint32(data[28:32]))
	if pages == 0 {
		return 0
	}
	return pageSize * pages
}

// peSize validates the PE header reference and falls back to MaxSize
func peSize(data []byte) int64 {
	if len(data) < 0x40 {
		return 0
	}
	lfanew := int64(binary.LittleEndian.Uint32(data[0x3c:0x40]))
	if lfanew < 0x40 || lfanew+4 > int64(len(data)) || lfanew > 4096 {
		return 0
	}
	if !bytes.Equal(data[lfanew:lfanew+4], []byte("PE\x00\x00")) {
		return 0
	}
	return -1
}
