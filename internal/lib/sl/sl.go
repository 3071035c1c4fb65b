package sl

import (
	"log/slog"
)

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module returns a slog attribute naming the emitting module.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret returns a slog attribute with the value masked down to its
// first and last two characters, so tokens never land in logs verbatim.
func Secret(key, value string) slog.Attr {
	masked := "****"
	if len(value) > 8 {
		masked = value[:2] + "****" + value[len(value)-2:]
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
