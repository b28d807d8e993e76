// Package staging manages the directory a build export is copied into before
// it is deployed. The staging directory is owned by the tool: Reset empties it
// and Mirror replaces its contents with a fresh copy of a build output.
package staging
