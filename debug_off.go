//go:build !avldebug

package avltree

const debugChecks = false
