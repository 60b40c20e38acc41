// Package keys resolves the identifiers that appear in captured input.
//
// The capture layer reports keys as Windows virtual-key codes and mouse
// buttons as short lowercase names. Step descriptions use the platform key
// names ("Return", "LeftShift", "D1") and the canonical button spelling
// ("Left", "X1"). This package maps between the two in both directions.
//
// Unknown codes are never an error: Name falls back to "VK={code}" and
// Lookup accepts that form again, so every description produced from a
// capture can be resolved back to the code it came from.
package keys
