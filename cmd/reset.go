package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete recorded quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("user")
		all, _ := cmd.Flags().GetBool("all")
		if (username == "") == !all {
			return errors.New("specify exactly one of --user or --all")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		var userID int64
		if username != "" {
			u, err := st.UserRepo().ByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}
			userID = u.ID
		}

		n, err := st.ResultRepo().Reset(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d results.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("user", "", "Reset one user's results")
	resetCmd.Flags().Bool("all", false, "Reset every user's results")
}
