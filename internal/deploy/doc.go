// Package deploy mirrors a local directory tree onto an FTP server.
//
// Run opens one session, makes sure the remote base directory exists, walks
// the local tree depth-first and uploads every file that the ignore patterns
// do not exclude. Ignored directories are pruned and never descended into.
// Nothing is deleted remotely and every file is sent whole.
package deploy
