package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var repoURL, repoSummary, postingFile, referenceURL string
	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Generate a tailored project description",
		RunE: func(cmd *cobra.Command, args []string) error {
			if repoURL == "" {
				return fmt.Errorf("--repo required")
			}
			posting, err := readInput(nil, postingFile)
			if err != nil {
				return err
			}
			payload := map[string]string{
				"repoUrl":    repoURL,
				"jobPosting": posting,
			}
			if repoSummary != "" {
				payload["repoSummary"] = repoSummary
			}
			if referenceURL != "" {
				payload["referenceUrl"] = referenceURL
			}
			out, err := body(newRequest().SetBody(payload).Post("/v1/descriptions"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	describeCmd.Flags().StringVarP(&repoURL, "repo", "r", "", "Repository URL (required)")
	describeCmd.Flags().StringVarP(&repoSummary, "summary", "s", "", "Short repository summary")
	describeCmd.Flags().StringVarP(&postingFile, "file", "f", "", "Read posting text from file ('-' for stdin)")
	describeCmd.Flags().StringVarP(&referenceURL, "url", "u", "", "Posting URL, used as the cache identity")
	_ = describeCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(describeCmd)
}
