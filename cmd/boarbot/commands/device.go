package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boarbot/internal/crypto"
)

func deviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Print the device fingerprint, generating the device if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, created, err := appCtx.Devices.LoadOrCreate()
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Device created at %s\n", appCtx.Devices.Path())
			}
			fmt.Printf("Fingerprint: %s\n", crypto.DeviceFingerprint(d))
			fmt.Printf("Model:       %s %s (Android %s)\n", d.Brand, d.Model, d.OSVersion)
			fmt.Printf("IMEI:        %s\n", d.IMEI)
			return nil
		},
	}
}
