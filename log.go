package feedview

import (
	"log/slog"
	"os"
)

// feedLogLevel controls the log level for feed engine debugging.
// Default is LevelInfo, which suppresses Debug messages.
// SetVerbose(true) sets it to LevelDebug.
var feedLogLevel = new(slog.LevelVar)

// SetVerbose enables or disables verbose/debug logging for the engine.
// Call this from main() after parsing flags.
func SetVerbose(v bool) {
	if v {
		feedLogLevel.Set(slog.LevelDebug)
	} else {
		feedLogLevel.Set(slog.LevelInfo)
	}
}

// feedLogger is the default logger for feed instances. A per-feed logger can
// be substituted with WithLogger.
var feedLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: feedLogLevel}))

func init() {
	if os.Getenv("FEEDVIEW_DEBUG") != "" {
		feedLogLevel.Set(slog.LevelDebug)
	}
}
