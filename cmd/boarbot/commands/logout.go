package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session token; the next run logs in by QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Tokens.DeleteToken(); err != nil {
				return err
			}
			fmt.Printf("Session token removed from %s\n", appCtx.Tokens.Path())
			return nil
		},
	}
}
