package main

import (
	"runtime/debug"

	"github.com/segmentio/okta-idx/cmd"
)

// Both are set with -ldflags "-X main.Version=... -X main.AnalyticsWriteKey=...".
// Analytics stay off without a write key.
var (
	Version           = ""
	AnalyticsWriteKey = ""
)

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cmd.Execute(version(), AnalyticsWriteKey)
}
