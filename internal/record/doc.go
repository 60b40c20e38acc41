// Package record captures raw input events for consolidation.
//
// A Source hands out the full event history of a capture session. Buffer
// is the in-memory Source that capture front ends write into; it applies
// the recording Settings and can stream each kept event to a sink such as
// a raw event log. Terminal is a capture front end for a tcell screen.
package record
