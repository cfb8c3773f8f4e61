// Package version holds the build version, overridable at link time.
package version

// Version is the service version reported to clients.
var Version = "0.3.0"

// Commit is the git commit the binary was built from.
var Commit = "unknown"
