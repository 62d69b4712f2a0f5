// Package workflow advances queued dubbing projects through the processing
// stages.
//
// The Manager polls the queue for projects whose status marks them ready for
// the next stage (pending, transcribed, translated, synthesized), flips the
// project into the matching processing status, and runs the registered stage
// handler's Prepare and Execute phases. Completed stages move the project to
// the stage's done status; failures record the error message and park the
// project as failed. On startup the manager rolls any project stranded in a
// processing status back to the preceding ready status so interrupted work is
// picked up again.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and registering the transition here; this package is the
// authoritative home for that coordination logic.
package workflow
