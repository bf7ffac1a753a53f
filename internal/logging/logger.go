// Package logging provides structured JSON logging with render-group ID
// propagation. It wraps Go's built-in log/slog with a per-render-group ID
// injected by the HTTP engine and extracted from context so every log line
// emitted during a build/send/render cycle can be correlated.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
)

type contextKey string

const groupIDKey contextKey = "render_group_id"

// Logger is the package-level structured logger. Callers should prefer
// FromContext(ctx) to automatically attach the render group id.
var Logger *slog.Logger

func init() {
	Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Setup (re-)initialises the package logger. level is one of
// debug/info/warn/error (default info). format is "json" (default) or "text".
func Setup(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// NewGroupID generates a random 16-byte hex render group id.
func NewGroupID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithGroupID stores a render group id in the context.
func WithGroupID(ctx context.Context, groupID string) context.Context {
	return context.WithValue(ctx, groupIDKey, groupID)
}

// GroupIDFromContext retrieves the render group id stored in the context.
func GroupIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(groupIDKey).(string)
	return v
}

// FromContext returns a *slog.Logger pre-annotated with the render_group_id
// from ctx, if one was set via WithGroupID.
func FromContext(ctx context.Context) *slog.Logger {
	if id := GroupIDFromContext(ctx); id != "" {
		return Logger.With("render_group_id", id)
	}
	return Logger
}
