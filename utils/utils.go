// Package utils implements various helper functions.
package utils

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// GetSortedKeys returns the sorted keys of a map.
func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Min returns the minimum between to comparable values.
func Min[T constraints.Ordered](a, b T) T {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum between to comparable values.
func Max[T constraints.Ordered](a, b T) T {
	if a >= b {
		return a
	}
	return b
}

// Grow returns s extended with zero values so that index n is valid.
func Grow[T any](s []T, n int) []T {
	if n < len(s) {
		return s
	}
	return append(s, make([]T, n+1-len(s))...)
}

// Bind packs two non-negative 32-bit values into a single uint64 key.
func Bind(i, j int) uint64 {
	return uint64(i)<<32 | uint64(uint32(j))
}

// UnBind recovers the two values packed by [Bind].
func UnBind(ij uint64) (i, j int) {
	return int(ij >> 32), int(uint32(ij))
}
