// Package ignore decides which relative paths of a local tree are excluded from
// an upload.
//
// Patterns use shell-glob semantics in which "*" also matches "/", so "*.log"
// excludes "logs/app.log" as well as "app.log". A pattern naming a bare
// directory such as "node_modules" additionally excludes everything whose
// first path segment equals it. Matches are a pure union: there is no negation.
package ignore
