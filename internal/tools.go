//go:build tools

// Package internal's tools.go anchors the dev-time stringer dependency so
// `go mod tidy` keeps it in go.sum even though no non-generated source
// imports it directly — the go:generate directives in token, types, and ir
// invoke it as a command, not as an importable package.
package internal

import (
	_ "golang.org/x/tools/cmd/stringer"
)
