package sleuthkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"forensdesk/internal/domain"
)

const scanChunk = 1 << 20

// Search matches file names in every partition, then scans the raw image
// for the keyword in ASCII/UTF-8 and UTF-16LE. Raw hits are reported as
// "offset:N" references.
func (i *Image) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, nil
	}

	var results []domain.SearchResult
	if !i.wiped {
		names, err := i.searchNames(ctx, query)
		if err != nil {
			return nil, err
		}
		results = append(results, names...)
	}

	if i.limitReached(len(results)) {
		return results[:i.searchLimit], nil
	}

	f, err := os.Open(i.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hits, err := ScanKeyword(ctx, f, query, i.remaining(len(results)))
	if err != nil {
		return nil, err
	}
	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			Name:      fmt.Sprintf("%s @ %d (%s)", query, hit.Offset, hit.Encoding),
			Path:      "",
			Size:      domain.HumanSize(int64(hit.Length)),
			InodeItem: "offset:" + strconv.FormatInt(hit.Offset, 10),
		})
	}
	return results, nil
}

func (i *Image) limitReached(n int) bool {
	return i.searchLimit > 0 && n >= i.searchLimit
}

func (i *Image) remaining(n int) int {
	if i.searchLimit <= 0 {
		return 0
	}
	return i.searchLimit - n
}

func (i *Image) searchNames(ctx context.Context, query string) ([]domain.SearchResult, error) {
	needle := strings.ToLower(query)
	var results []domain.SearchResult
	for _, p := range i.partitions {
		out, err := i.runner.Run(ctx, "fls", "-r", "-p", "-l", "-u", "-z", "UTC",
			"-o", strconv.FormatInt(p.StartOffset, 10), i.path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			i.logger.Debug("fls failed on partition", zap.Int("partition", p.Index), zap.Error(err))
			continue
		}
		rows, err := ParseEntries(out)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			base := row.Name[strings.LastIndex(row.Name, "/")+1:]
			if !strings.Contains(strings.ToLower(base), needle) {
				continue
			}
			results = append(results, domain.SearchResult{
				Name:       base,
				Path:       "/" + row.Name,
				Size:       domain.HumanSize(row.Size),
				InodeItem:  row.Inode,
				Timestamps: row.Times,
			})
		}
	}
	return results, nil
}

// Hit is a raw keyword match
type Hit struct {
	Offset   int64
	Length   int
	Encoding string
}

type pattern struct {
	encoding string
	needle   []byte
}

func keywordPatterns(query string) ([]pattern, error) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(query)
	if err != nil {
		return nil, fmt.Errorf("encode keyword: %w", err)
	}
	return []pattern{
		{encoding: "utf-8", needle: foldASCII([]byte(query))},
		{encoding: "utf-16le", needle: foldASCII([]byte(utf16))},
	}, nil
}

// ScanKeyword finds query in r, ignoring ASCII case. A limit of 0 means
// no limit.
func ScanKeyword(ctx context.Context, r io.Reader, query string, limit int) ([]Hit, error) {
	if query == "" {
		return nil, nil
	}
	patterns, err := keywordPatterns(query)
	if err != nil {
		return nil, err
	}
	overlap := 0
	for _, p := range patterns {
		overlap = max(overlap, len(p.needle)-1)
	}

	var hits []Hit
	buf := make([]byte, 0, scanChunk+overlap)
	chunk := make([]byte, scanChunk)
	var base int64 // image offset of buf[0]
	tail := 0      // bytes of buf carried over from the previous chunk
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, rerr := io.ReadFull(r, chunk)
		buf = append(buf, foldASCII(chunk[:n])...)
		eof := errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF)
		if rerr != nil && !eof {
			return nil, rerr
		}

		for _, p := range patterns {
			for pos := 0; ; {
				idx := bytes.Index(buf[pos:], p.needle)
				if idx < 0 {
					break
				}
				at := pos + idx
				pos = at + 1
				if at+len(p.needle) <= tail {
					// reported with the previous chunk
					continue
				}
				hits = append(hits, Hit{Offset: base + int64(at), Length: len(p.needle), Encoding: p.encoding})
				if limit > 0 && len(hits) >= limit {
					sortHits(hits)
					return hits, nil
				}
			}
		}

		if eof {
			sortHits(hits)
			return hits, nil
		}
		tail = min(overlap, len(buf))
		base += int64(len(buf) - tail)
		buf = append(buf[:0], buf[len(buf)-tail:]...)
	}
}

func sortHits(hits []Hit) {
	domain.SortBy(hits, func(h Hit) int64 { return h.Offset })
}

// foldASCII lowercases A-Z without touching other bytes, so offsets are kept
func foldASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
