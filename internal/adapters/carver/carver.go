// Package carver recovers files from raw bytes by header and footer
// signatures, independent of any file-system metadata.
package carver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"forensdesk/internal/adapters/filetype"
	"forensdesk/internal/domain"
)

const (
	// DefaultLimit caps how many bytes a single scan reads
	DefaultLimit = 256 * mib
	chunkSize    = 1 * mib
	sniffSize    = 4096
)

// Found is one recovered file
type Found struct {
	Offset int64
	Length int64
	Type   domain.FileType
	Data   []byte
}

// Result is the outcome of one scan
type Result struct {
	Files     []Found
	Scanned   int64
	Truncated bool // The byte budget ran out before the reader did
}

// Carver scans streams for known signatures
type Carver struct {
	Signatures []Signature
	Limit      int64
}

// New creates a carver with DefaultSignatures. A limit of 0 selects DefaultLimit.
func New(limit int64) *Carver {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Carver{Signatures: DefaultSignatures, Limit: limit}
}

// Scan reads at most c.Limit bytes from r and returns files whose type
// satisfies want ("all", a category or an extension)
func (c *Carver) Scan(ctx context.Context, r io.Reader, want string) (*Result, error) {
	data, truncated, err := c.readBounded(ctx, r)
	if err != nil {
		return nil, err
	}

	result := &Result{Scanned: int64(len(data)), Truncated: truncated}
	for _, sig := range c.Signatures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sigType := domain.FileType{Type: sig.Type, Extension: sig.Extension, Description: sig.Description}
		if !filetype.Matches(sigType, want) {
			continue
		}
		result.Files = append(result.Files, c.scanSignature(data, sig)...)
	}

	domain.SortBy(result.Files, func(f Found) int64 { return f.Offset })
	return result, nil
}

func (c *Carver) readBounded(ctx context.Context, r io.Reader) ([]byte, bool, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		remaining := c.Limit - int64(buf.Len())
		if remaining <= 0 {
			return buf.Bytes(), true, nil
		}
		n, err := r.Read(chunk[:min(int64(len(chunk)), remaining)])
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read image: %w", err)
		}
	}
}

func (c *Carver) scanSignature(data []byte, sig Signature) []Found {
	var found []Found
	pos := 0
	for {
		idx := bytes.Index(data[pos:], sig.Header)
		if idx < 0 {
			return found
		}
		start := pos + idx

		length := c.matchLength(data[start:], sig)
		if length <= 0 {
			pos = start + 1
			continue
		}

		end := start + int(length)
		content := data[start:end]
		found = append(found, Found{
			Offset: int64(start),
			Length: length,
			Type:   classify(content, sig),
			Data:   content,
		})
		pos = end
	}
}

func (c *Carver) matchLength(tail []byte, sig Signature) int64 {
	limit := min(int64(len(tail)), sig.MaxSize)

	if sig.Size != nil {
		size := sig.Size(tail)
		switch {
		case size == 0:
			return 0
		case size > 0:
			return min(size, limit)
		}
	}

	if sig.Footer != nil {
		window := tail[len(sig.Header):limit]
		if idx := bytes.Index(window, sig.Footer); idx >= 0 {
			end := int64(len(sig.Header)+idx+len(sig.Footer)) + footerExtra(sig)
			return min(end, limit)
		}
	}
	return limit
}

func classify(content []byte, sig Signature) domain.FileType {
	ft := filetype.Detect(content[:min(len(content), sniffSize)])
	if ft == domain.UnknownFileType || ft.Type == "text" {
		return domain.FileType{Type: sig.Type, Extension: sig.Extension, Description: sig.Description}
	}
	return ft
}
