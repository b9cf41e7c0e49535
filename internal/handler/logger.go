package handler

import (
	"context"
	"log/slog"

	"boarbot/internal/domain"
)

// Logger writes one log line per message or request event. Other events are
// ignored.
type Logger struct {
	log *slog.Logger
}

var _ domain.Module = (*Logger)(nil)

// NewLogger returns a Logger writing to log.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log.With("module", "logger")}
}

func (l *Logger) Name() string { return "logger" }

func (l *Logger) Handle(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.GroupMessage:
		l.log.InfoContext(ctx, "group message",
			"group", e.GroupCode, "from", e.From, "text", e.Elements.String())
	case domain.FriendMessage:
		l.log.InfoContext(ctx, "friend message",
			"from", e.From, "text", e.Elements.String())
	case domain.GroupTempMessage:
		l.log.InfoContext(ctx, "temp message",
			"group", e.GroupCode, "from", e.From, "text", e.Elements.String())
	case domain.GroupRequest:
		l.log.InfoContext(ctx, "group request",
			"group", e.GroupCode, "uin", e.ReqUIN, "message", e.Message)
	case domain.FriendRequest:
		l.log.InfoContext(ctx, "friend request",
			"uin", e.ReqUIN, "message", e.Message)
	}
	return nil
}
