// Package logging configures structured JSON logging for the backend.
// Log lines go to stderr and, when configured, to a file under the app's
// log directory. Sensitive attribute values are redacted.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Keys whose attribute values are never written to logs.
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"token":         {},
	"api_key":       {},
	"password":      {},
	"secret":        {},
	"cookie":        {},
	"set-cookie":    {},
}

// ParseLevel parses a log level string into slog.Level. Unknown values
// fall back to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		a.Value = slog.StringValue("[REDACTED]")
	}
	return a
}

// Setup builds the process logger and installs it as the slog default.
// When logFile is non-empty, log lines are duplicated into it. The returned
// closer is nil when no file was opened.
func Setup(level, logFile string) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redact,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer, nil
}
