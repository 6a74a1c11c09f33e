package kumi

// extendSlice extends a slice by n zeroed elements, reallocating if necessary.
func extendSlice[T any](s []T, n int) []T {
	newLen := len(s) + n
	if cap(s) >= newLen {
		s = s[:newLen]
		clear(s[newLen-n:])
		return s
	}
	newCap := max(2*cap(s), newLen)
	ns := make([]T, newLen, newCap)
	copy(ns, s)
	return ns
}
