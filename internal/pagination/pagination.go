// Package pagination implements the offset/limit slicing contract shared by
// wallet views and directory lookups.
package pagination

// Slice returns the ascending page [offset, offset+limit) over items,
// clamped to the available tail.
func Slice[T any](items []T, offset, limit int) []T {
	size := pageSize(len(items), offset, limit)
	if size == 0 {
		return []T{}
	}
	page := make([]T, size)
	copy(page, items[offset:offset+size])
	return page
}

// SliceDesc returns a newest-first page: it starts at index
// len(items)-offset-1 and walks downward for up to limit elements. Any
// computed index out of bounds short-circuits to an empty page rather than a
// partial one.
func SliceDesc[T any](items []T, offset, limit int) []T {
	size := pageSize(len(items), offset, limit)
	if size == 0 {
		return []T{}
	}
	page := make([]T, 0, size)
	for i := 0; i < size; i++ {
		idx := len(items) - offset - 1 - i
		if idx < 0 || idx >= len(items) {
			return []T{}
		}
		page = append(page, items[idx])
	}
	return page
}

func pageSize(length, offset, limit int) int {
	if offset < 0 || limit <= 0 {
		return 0
	}
	available := 0
	if length > offset {
		available = length - offset
	}
	if available < limit {
		return available
	}
	return limit
}
