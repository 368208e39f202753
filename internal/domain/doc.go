// Package domain defines the core signage types and interfaces.
//
// This package contains concept-oriented files (layout.go, ad.go, change.go,
// feed.go, repository.go, errors.go) with shared types and cross-cutting
// interfaces. No implementation code - just contracts. Prevents circular
// imports by keeping interfaces on the consumer side.
package domain
