// Package openai provides a minimal chat completion client used by the
// translation pipeline.
package openai
