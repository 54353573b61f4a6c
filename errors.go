package avltree

import "errors"

var (
	// ErrInvalidConfig signals an invalid or released tree configuration.
	ErrInvalidConfig = errors.New("avltree: invalid configuration")
	// ErrCorruptTree signals a violated structural invariant, found by Check.
	ErrCorruptTree = errors.New("avltree: corrupt tree")
	// ErrUnbalanced signals a violated AVL balance invariant, found by Check.
	ErrUnbalanced = errors.New("avltree: balance invariant violated")
)
