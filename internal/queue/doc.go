// Package queue persists dubbing projects in SQLite and exposes the status
// transitions the workflow manager drives them through.
package queue
