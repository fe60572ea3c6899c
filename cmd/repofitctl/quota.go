package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	quotaCmd := &cobra.Command{Use: "quota", Short: "Quota operations"}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the caller's quota state",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := body(newRequest().Get("/v1/quota"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	quotaCmd.AddCommand(getCmd)

	var tier string
	setTierCmd := &cobra.Command{
		Use:   "set-tier USER_ID",
		Short: "Set a user's subscription tier (free, pro)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tier == "" {
				return fmt.Errorf("--tier required")
			}
			out, err := body(newRequest().
				SetBody(map[string]string{"tier": tier}).
				Put(fmt.Sprintf("/v1/admin/users/%s/tier", args[0])))
			if err != nil {
				return err
			}
			if out == "" {
				out = "ok"
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	setTierCmd.Flags().StringVarP(&tier, "tier", "t", "", "Tier name (required)")
	_ = setTierCmd.MarkFlagRequired("tier")
	quotaCmd.AddCommand(setTierCmd)

	rootCmd.AddCommand(quotaCmd)
}
