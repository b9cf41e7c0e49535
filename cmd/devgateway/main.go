package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"boarbot/internal/devgateway"
	"boarbot/internal/domain"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr       string
		deviceLock bool
		phases     string
	)

	cmd := &cobra.Command{
		Use:           "devgateway",
		Short:         "In-memory development gateway for boarbot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			srv := devgateway.New(devgateway.Options{
				Phases:     parsePhases(phases),
				DeviceLock: deviceLock,
				Logger:     log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr, srv, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&deviceLock, "device-lock", false, "require a device-lock login after QR confirmation")
	cmd.Flags().StringVar(&phases, "phases", "", "comma-separated QR phases answered to successive polls")
	return cmd
}

func serve(ctx context.Context, addr string, srv *devgateway.Server, log *slog.Logger) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("devgateway listening", "addr", addr, "gateway", srv.String())
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Shutdown does not touch hijacked connections.
	srv.CloseSessions()
	return hs.Shutdown(shutdownCtx)
}

func parsePhases(s string) []domain.QRPhase {
	var out []domain.QRPhase
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, domain.QRPhase(p))
		}
	}
	return out
}
