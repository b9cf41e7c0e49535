package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"boarbot/internal/crypto"
	"boarbot/internal/domain"
	"boarbot/internal/engine"
	"boarbot/internal/gateway"
	"boarbot/internal/handler"
	"boarbot/internal/metrics"
	"boarbot/internal/protocol/wire"
	"boarbot/internal/services/login"
)

// Run drives one bot session until ctx ends, which is a clean exit. Every
// other ending is an error: a failed step before dispatch starts, or the
// gateway closing the connection (wrapping gateway.ErrClosed).
func Run(ctx context.Context, w *Wire) error {
	log := w.Log
	cfg := w.Config

	device, created, err := w.Devices.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("app: device: %w", err)
	}
	fp := crypto.DeviceFingerprint(device)
	if created {
		log.Info("generated new device", "device", fp, "path", w.Devices.Path())
	} else {
		log.Info("loaded device", "device", fp)
	}

	codec, err := wire.ByName(cfg.Gateway.Codec)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	conn, err := gateway.Dial(ctx, gateway.Options{
		URL:            cfg.Gateway.URL,
		Codec:          codec,
		Keepalive:      cfg.Gateway.Keepalive,
		RequestTimeout: cfg.Gateway.RequestTimeout,
		HTTPClient:     w.HTTP,
		Logger:         log,
	}, device)
	if err != nil {
		return fmt.Errorf("app: connect: %w", err)
	}
	defer conn.Close()

	svc := login.New(conn, w.Tokens, w.QRCodes, fp, login.Options{
		PollInterval: cfg.Login.PollInterval,
		Metrics:      w.Metrics,
		Logger:       log,
	})
	out, err := svc.Login(ctx)
	if err != nil {
		return err
	}

	housekeeping(ctx, conn, log, out.Account)

	eng := engine.New(log, w.Metrics)
	modules, err := buildModules(cfg.Modules, conn, log)
	if err != nil {
		return err
	}
	for _, m := range modules {
		eng.Register(m)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, w.Metrics, log)
		})
	}
	g.Go(func() error {
		defer cancel()
		if err := eng.Run(gctx, conn.Events()); err != nil {
			return err
		}
		return fmt.Errorf("app: dispatch: %w", conn.Err())
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// housekeeping logs the account's contacts. Failures are not fatal.
func housekeeping(ctx context.Context, dir domain.Directory, log *slog.Logger, account domain.UIN) {
	friends, err := dir.FriendList(ctx)
	if err != nil {
		log.Warn("friend list unavailable", "err", err)
	} else {
		log.Info("friend list", "account", account, "count", len(friends))
		for _, f := range friends {
			log.Debug("friend", "uin", f.UIN, "nick", f.Nick)
		}
	}

	groups, err := dir.GroupList(ctx)
	if err != nil {
		log.Warn("group list unavailable", "err", err)
		return
	}
	log.Info("group list", "account", account, "count", len(groups))
	for _, g := range groups {
		log.Debug("group", "code", g.Code, "name", g.Name, "members", g.MemberCount)
	}
}

func buildModules(names []string, sender domain.MessageSender, log *slog.Logger) ([]domain.Module, error) {
	modules := make([]domain.Module, 0, len(names))
	for _, name := range names {
		switch name {
		case "logger":
			modules = append(modules, handler.NewLogger(log))
		case "echo":
			modules = append(modules, handler.NewEcho(sender, log))
		default:
			return nil, fmt.Errorf("app: unknown module %q", name)
		}
	}
	return modules, nil
}
