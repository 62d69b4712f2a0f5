// Package translation rewrites transcript segments into a target language.
// Segment texts travel to the model inside bracketed spans so the original
// segmentation survives the round trip, and long transcripts are split into
// chunks that never cut a span in half.
package translation
