package sleuthkit

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"forensdesk/internal/domain"
)

// mmls rows look like
// 002:  000:000   0000002048   0002099199   0002097152   Linux (0x83)
var mmlsRow = regexp.MustCompile(`^\s*\d+:\s+(\S+)\s+(\d+)\s+(\d+)\s+(\d+)\s+(.*)$`)

// ParsePartitions extracts allocated volumes from mmls output
func ParsePartitions(out []byte) []domain.Partition {
	var parts []domain.Partition
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := mmlsRow.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		slot := m[1]
		if slot == "Meta" || strings.HasPrefix(slot, "---") {
			continue
		}
		start, _ := strconv.ParseInt(m[2], 10, 64)
		length, _ := strconv.ParseInt(m[4], 10, 64)
		parts = append(parts, domain.Partition{
			Index:       len(parts) + 1,
			Label:       strings.TrimSpace(m[5]),
			StartOffset: start,
			Size:        length,
		})
	}
	return parts
}

// ParseFSType returns the "File System Type" line of fsstat output
func ParseFSType(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "File System Type:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ParseBlockSize returns the block size TSK addresses a file system in,
// zero when fsstat does not report one. FAT is addressed in sectors and
// NTFS in clusters.
func ParseBlockSize(out []byte) int64 {
	sizes := map[string]int64{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if _, seen := sizes[key]; !seen {
			sizes[key] = n
		}
	}
	if n, ok := sizes["block size"]; ok {
		return n
	}
	if strings.HasPrefix(strings.ToUpper(ParseFSType(out)), "FAT") {
		return sizes["sector size"]
	}
	return sizes["cluster size"]
}

// flsTime is how fls -z UTC renders times
const flsTime = "2006-01-02 15:04:05 (MST)"

// Entry is one fls -l row
type Entry struct {
	Inode string // Full address, e.g. "4-128-4"
	Name  string
	IsDir bool
	Size  int64
	Times domain.Timestamps
}

// InodeNumber is the metadata address without attribute type and id
func (e Entry) InodeNumber() uint64 {
	head, _, _ := strings.Cut(e.Inode, "-")
	n, _ := strconv.ParseUint(head, 10, 64)
	return n
}

// DirectoryEntry converts the row for listing
func (e Entry) DirectoryEntry() domain.DirectoryEntry {
	return domain.DirectoryEntry{
		Name:        e.Name,
		IsDirectory: e.IsDir,
		InodeNumber: e.InodeNumber(),
		Size:        domain.HumanSize(e.Size),
		Timestamps:  e.Times,
	}
}

// ParseEntries parses fls -l output. Rows look like
// r/r 4-128-4:<TAB>$AttrDef<TAB>mtime<TAB>atime<TAB>ctime<TAB>crtime<TAB>size<TAB>uid<TAB>gid
func ParseEntries(out []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			return nil, fmt.Errorf("unexpected fls row: %q", line)
		}

		head := strings.Fields(strings.TrimSuffix(fields[0], ":"))
		if len(head) < 2 {
			return nil, fmt.Errorf("unexpected fls row: %q", line)
		}
		kind, inode := head[0], head[len(head)-1]
		if len(head) > 2 && head[1] == "*" {
			// deleted
			continue
		}

		name := fields[1]
		if name == "." || name == ".." {
			continue
		}

		size, err := strconv.ParseInt(strings.TrimSpace(fields[6]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad size in fls row %q: %w", line, err)
		}

		entries = append(entries, Entry{
			Inode: strings.TrimSuffix(inode, ":"),
			Name:  name,
			IsDir: isDirKind(kind),
			Size:  size,
			Times: domain.Timestamps{
				Modified: parseTime(fields[2]),
				Accessed: parseTime(fields[3]),
				Changed:  parseTime(fields[4]),
				Created:  parseTime(fields[5]),
			},
		})
	}
	return entries, scanner.Err()
}

// isDirKind reads the meta type after the slash in "d/d" or "-/d"
func isDirKind(kind string) bool {
	_, meta, ok := strings.Cut(kind, "/")
	if !ok {
		meta = kind
	}
	return meta == "d"
}

func parseTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return ""
	}
	t, err := time.Parse(flsTime, s)
	if err != nil {
		return s
	}
	return domain.FormatTimestamp(t)
}
