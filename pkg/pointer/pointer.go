// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Package pointer builds pointers to literal values.
package pointer

// To returns a pointer to the provided value.
// It is useful when a struct field or parameter expects a pointer to a
// constant (e.g. pointer.To(1)).
func To[T any](v T) *T {
	return &v
}
