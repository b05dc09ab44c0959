package internal

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// NewLogger builds the application logger: JSON lines by default, or
// human-readable text through charmbracelet/log when format is "text".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	if format == LogFormatText {
		// charmbracelet/log levels share slog's numeric values.
		return slog.New(log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.Level(level),
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
