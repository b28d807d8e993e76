// Package transfer owns the FTP session used to publish a tree: connecting
// (optionally upgrading to explicit TLS), navigating and creating remote
// directories, storing files, and releasing the connection.
//
// Data connections are always passive: the client opens them, which is the
// configuration that works through NAT and common firewalls.
package transfer
