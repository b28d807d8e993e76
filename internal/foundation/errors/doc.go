// Package errors provides the classified error primitives used across ftpdeploy.
//
// Every failure that reaches the CLI is a ClassifiedError (or wraps one), so the
// process exit status can be derived from the error category alone:
//
//   - CategoryConfig, CategoryValidation: exit status 2, reported before any
//     network action is attempted
//   - CategoryBuild: the external build tool's exit status, passed through
//   - everything else: exit status 1
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryTransfer, "upload failed").
//		WithContext("remote_path", remote).
//		Build()
package errors
