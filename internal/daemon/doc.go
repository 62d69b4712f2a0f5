// Package daemon runs the dubbing workflow as a long-lived background
// process. It enforces single-instance execution with a file lock and owns
// the lifecycle of the queue store and workflow manager.
package daemon
