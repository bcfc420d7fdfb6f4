// Package version carries the module's build version string.
package version

// Version is overridden at build time via -ldflags.
var Version = "dev"
