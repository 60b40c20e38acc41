// Package step defines the macro timeline model.
//
// A Step is one semantic entry of a macro: a delay, a key press or release,
// a mouse button press or release, an absolute cursor move, or a jump to
// another line. Each Step carries structured fields for its kind together
// with a canonical Description rendered from those fields by the codec
// package.
//
// Steps are plain values. Copying a Step, or calling Clone, produces a fully
// independent step, which is what copy and paste rely on.
//
// List holds an ordered timeline and implements the editing operations
// (insert, delete, move, cut, copy, paste, comment). Array position is the
// only ordering authority; Seq is recomputed after every structural change.
package step
