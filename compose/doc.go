// Package compose splices auxiliary code fragments into shader source text.
//
// A fragment ([Injection]) carries a numeric position that selects where it
// lands relative to the shader's entry point:
//
//	position < 0       before the entry point function (prelude)
//	0 <= position < 1  inside the entry point, right after its opening brace
//	position >= 1      after the entry point's closing brace
//
// Fragments are ordered by position with a stable sort, so fragments that
// share a position keep their insertion order. [Compose] is a pure function:
// the same base text and injection list always produce the same output.
//
// The entry point is located textually. By default the function named
// "main" is used (GLSL convention and the common WGSL name); when no such
// function exists, the first function tagged @vertex, @fragment or
// @compute is used instead. Comments are ignored while searching.
package compose
