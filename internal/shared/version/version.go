// Package version carries the build version embedded in reports and the
// CLI banner. Overridden at link time:
//
//	go build -ldflags "-X pycheck/internal/shared/version.Version=v1.2.0"
package version

var Version = "dev"
