// Package version carries build information for authkit binaries and the
// User-Agent sent by its HTTP transport.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/authkit/version.Version=1.2.0"
//
// Unset fields fall back to the module build info.
package version
