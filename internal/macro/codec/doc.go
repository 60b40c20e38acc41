// Package codec maps macro steps to and from their canonical description.
//
// Every step kind has exactly one description format:
//
//	Delay 250 ms.
//	Delay from 100 to 300 ms.
//	Press LeftShift
//	Release A
//	Click Left Mouse
//	Release Right Mouse at (640, 480)
//	Move cursor 10 20 (absolute)
//	Go to line #3
//	Wheel: Delta=120
//
// Encode renders a description from a step's structured fields. Decode goes
// the other way for editing: it fills a Form the user can change, and Build
// validates a Form and returns a new step. Build(Decode(s)) reproduces s for
// every step Build can produce.
package codec
