// Package version reports the build of the graphkit binary. Values are
// injected with -ldflags and fall back to the VCS stamp of the Go build:
//
//	go build -ldflags "-X github.com/kbukum/graphkit/version.Version=v0.3.0"
package version
