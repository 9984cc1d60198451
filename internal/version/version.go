// Package version holds build metadata injected via ldflags:
//
//	-X github.com/bazaarhq/listing-search/internal/version.Version=v1.4.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for logs and the User-Agent of
// outbound requests.
func String() string {
	return fmt.Sprintf("listing-search/%s (%s, %s)", Version, Commit, Date)
}
