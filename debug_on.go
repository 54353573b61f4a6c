//go:build avldebug

package avltree

// debugChecks enables iterator bookkeeping and contract checks.
const debugChecks = true
