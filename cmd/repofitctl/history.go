package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	historyCmd := &cobra.Command{Use: "history", Short: "Generated description history"}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := body(newRequest().
				SetQueryParam("limit", fmt.Sprintf("%d", limit)).
				Get("/v1/history"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to return")
	historyCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get RECORD_ID",
		Short: "Show one history record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := body(newRequest().Get("/v1/history/" + args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	historyCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete RECORD_ID",
		Short: "Delete a history record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := body(newRequest().Delete("/v1/history/" + args[0])); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	historyCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(historyCmd)
}
