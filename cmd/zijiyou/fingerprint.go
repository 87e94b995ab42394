package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siskinc/zijiyou/fingerprint"
)

func NewFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [inputs...]",
		Short: "Print the fingerprint of the given strings",
		Long: `Print the md5 fingerprint of the inputs hashed in order. With --url every
input is canonicalized first, so query parameter order does not matter.
Without inputs the "no content" fingerprint 0 is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			isURL, _ := cmd.Flags().GetBool("url")
			fmt.Fprintln(cmd.OutOrStdout(), fingerprint.Generate(args, isURL))
			return nil
		},
	}
	cmd.Flags().BoolP("url", "u", false, "Treat inputs as URLs")
	return cmd
}
