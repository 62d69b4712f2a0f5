// Package services holds cross-cutting helpers for external provider clients
// and stage code: sentinel error kinds, error wrapping with stage context, and
// context annotation for project identifiers.
package services
