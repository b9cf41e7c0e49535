package handler

import (
	"context"
	"log/slog"

	"boarbot/internal/domain"
)

// Echo replies to every friend message with the same message chain.
type Echo struct {
	sender domain.MessageSender
	log    *slog.Logger
}

var _ domain.Module = (*Echo)(nil)

// NewEcho returns an Echo module sending through sender.
func NewEcho(sender domain.MessageSender, log *slog.Logger) *Echo {
	if log == nil {
		log = slog.Default()
	}
	return &Echo{sender: sender, log: log.With("module", "echo")}
}

func (e *Echo) Name() string { return "echo" }

// Handle never fails: a send error is logged and dropped.
func (e *Echo) Handle(ctx context.Context, ev domain.Event) error {
	msg, ok := ev.(domain.FriendMessage)
	if !ok {
		return nil
	}
	if err := e.sender.SendFriendMessage(ctx, msg.From, msg.Elements); err != nil {
		e.log.WarnContext(ctx, "echo failed", "to", msg.From, "err", err)
	}
	return nil
}
