// Package batch collects per-item outcomes of a run over many attendees.
//
// A failing item never stops the run. Failures are recorded with the stage that
// failed, summarized at the end and written to an errors-<timestamp>.log file in
// the output folder.
package batch
