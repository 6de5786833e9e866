package util

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate normalises page/size and returns the slice offset and limit.
// Pages too far out for the offset to fit in an int get math.MaxInt.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt, size
	}
	from = (page - 1) * size
	return from, size
}

// Window clamps [from, from+limit) to a collection of length n. An offset
// outside [0, n) yields an empty window.
func Window(n, from, limit int) (lo, hi int) {
	if from < 0 || from >= n {
		return n, n
	}
	if limit < 0 || limit > n-from {
		return from, n
	}
	return from, from + limit
}

// Pages is the number of pages needed for n items.
func Pages(n, size int) int {
	if size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
