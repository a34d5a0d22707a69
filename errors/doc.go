// Package errors provides the structured error type shared by graphkit
// packages. Every failure the execution core raises (configuration mistakes,
// unsupported capabilities, listener failures, graph write failures) is an
// *AppError carrying a machine-readable ErrorCode, so callers can branch on
// the code with HasCode instead of matching message text.
//
// Exhaustion of a traversal is not an error and is not represented here; see
// traversal.ErrExhausted.
package errors
