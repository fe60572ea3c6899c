package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var file, referenceURL string
	analyzeCmd := &cobra.Command{
		Use:   "analyze [TEXT]",
		Short: "Analyze the tone of a job posting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, file)
			if err != nil {
				return err
			}
			payload := map[string]string{"text": text}
			if referenceURL != "" {
				payload["referenceUrl"] = referenceURL
			}
			out, err := body(newRequest().SetBody(payload).Post("/v1/analyses"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	analyzeCmd.Flags().StringVarP(&file, "file", "f", "", "Read posting text from file ('-' for stdin)")
	analyzeCmd.Flags().StringVarP(&referenceURL, "url", "u", "", "Posting URL, used as the cache identity")
	rootCmd.AddCommand(analyzeCmd)
}

// readInput takes the posting text from the positional arg, a file, or
// stdin.
func readInput(args []string, file string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	switch file {
	case "":
		return "", fmt.Errorf("provide posting text as an argument or via --file")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	default:
		data, err := os.ReadFile(file)
		return string(data), err
	}
}
