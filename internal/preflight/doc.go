// Package preflight verifies the environment before queue processing
// starts: external binaries, directory access, the voice catalog, and
// provider credentials.
package preflight
