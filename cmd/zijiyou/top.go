package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siskinc/zijiyou/dedup"
)

func NewTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top [file]",
		Short: "Print the longest sentences of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			n, _ := cmd.Flags().GetInt("number")
			html, _ := cmd.Flags().GetBool("html")
			selector, _ := cmd.Flags().GetString("selector")
			delimiters, _ := cmd.Flags().GetString("delimiters")

			content, err := readContent(cmd, name, html, selector)
			if err != nil {
				return err
			}
			for _, sentence := range dedup.TopSentences(content, n, delimiters) {
				fmt.Fprintln(cmd.OutOrStdout(), sentence)
			}
			return nil
		},
	}
	cmd.Flags().IntP("number", "n", 10, "Number of sentences to print")
	cmd.Flags().Bool("html", false, "Extract the text of an html document first")
	cmd.Flags().String("selector", "", "CSS selector of the content nodes (with --html)")
	cmd.Flags().String("delimiters", "", "Sentence delimiters (default chinese and english terminators)")
	return cmd
}
