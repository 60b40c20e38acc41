// Package macrofile stores macros on disk.
//
// Three formats are supported:
//
//   - Macro files (.amc): the JSON event list replayed by the playback
//     engine, {"version":1,"events":[...]}. Loading skips items that are
//     not valid events; saving is atomic.
//   - Raw event logs (.jsonl): the capture stream, one {"t","kind",
//     "details"} object per line, appended to while recording.
//   - Step documents (.json, .yaml): an edited timeline with comments,
//     rebuilt and validated through the codec on load.
//
// ToRaw and FromSteps convert between macro file events, raw capture
// events and steps.
package macrofile
