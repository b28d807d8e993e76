// Package config builds the immutable deploy configuration.
//
// Values are merged once at startup from, in order of precedence:
//
//  1. explicit overrides (command line flags)
//  2. environment files (local/.env, then .env, under the project root)
//  3. the process environment
//  4. built-in defaults
//
// The result is a *Config that is passed by pointer to every component and
// never mutated; derived configurations are produced with copy-returning
// helpers such as WithLocalDir.
package config
