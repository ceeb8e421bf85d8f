package domain

import (
	"cmp"
	"slices"
)

// SortBy sorts items in ascending order of the key returned by keyFn.
// The sort is stable so entries with equal keys keep backend order.
func SortBy[T any, K cmp.Ordered](items []T, keyFn func(T) K) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(keyFn(a), keyFn(b))
	})
}

// SortEntries orders directory entries directories first, then by name
func SortEntries(entries []DirectoryEntry) {
	slices.SortStableFunc(entries, func(a, b DirectoryEntry) int {
		if a.IsDirectory != b.IsDirectory {
			if a.IsDirectory {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
