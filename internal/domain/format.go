package domain

import (
	"fmt"
	"time"
)

// TimestampLayout renders times as "2024-01-01 12:00:00 UTC"
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// FormatTimestamp renders t in UTC. The zero time renders as an empty string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

// UniformTimestamps sets all four times to the same instant
func UniformTimestamps(t time.Time) Timestamps {
	s := FormatTimestamp(t)
	return Timestamps{Accessed: s, Modified: s, Created: s, Changed: s}
}

// TimestampUnknown stands in for a time that no metadata records
const TimestampUnknown = "unknown"

// UnknownTimestamps marks all four times as unknown. Carved content has
// no file-system metadata to take them from.
func UnknownTimestamps() Timestamps {
	return Timestamps{Accessed: TimestampUnknown, Modified: TimestampUnknown, Created: TimestampUnknown, Changed: TimestampUnknown}
}

// OffsetLabel renders the image offset of carved content
func (c CarvedFile) OffsetLabel() string {
	if c.Offset < 0 {
		return TimestampUnknown
	}
	return fmt.Sprintf("%d", c.Offset)
}

// HumanSize renders a byte count the way listings display it ("0 B", "512 B", "1.2 KB")
func HumanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB", "TB", "PB"}
	size := float64(n) / 1024
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}
