// Package language normalizes user-supplied language identifiers to
// canonical base codes and renders human-readable names for display.
package language
