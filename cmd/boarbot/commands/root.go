package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boarbot/internal/app"
)

var (
	configPath string
	envFile    string
	home       string
	logLevel   string
	gatewayURL string
	codec      string

	appCtx *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "boarbot",
		Short:         "Messaging bot: device identity, QR/token login and event modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()

			flags := cmd.Flags()
			if flags.Changed("home") {
				cfg.Home = home
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("gateway") {
				cfg.Gateway.URL = gatewayURL
			}
			if flags.Changed("codec") {
				cfg.Gateway.Codec = codec
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			appCtx, err = app.NewWire(cfg, os.Stderr)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	pf.StringVar(&home, "home", "", "state dir (default ~/.boarbot)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&gatewayURL, "gateway", "", "gateway websocket URL (e.g. ws://127.0.0.1:8080/ws)")
	pf.StringVar(&codec, "codec", "", "wire codec: json or cbor")

	root.AddCommand(runCmd(), deviceCmd(), logoutCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
