// Package version holds the application version, overridden at build time with
//
//	go build -ldflags "-X github.com/ndewijer/Renewables-Dashboard-Backend/internal/version.Version=1.2.3"
package version

// Version is the application version.
var Version = "dev"
