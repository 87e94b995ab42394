package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	go_scrapy "github.com/siskinc/zijiyou"
	"github.com/siskinc/zijiyou/pipelines"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report which documents duplicate earlier ones",
		Long: `Check every file against the fingerprints known so far: the configured
seeds or collections, then the files checked before it. One line per file:
name, new or duplicate, fingerprint. With --save new documents are written to
the store, so later runs see them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("html", false, "Extract the text of html documents first")
	cmd.Flags().String("selector", "", "CSS selector of the content nodes (with --html)")
	cmd.Flags().Bool("save", false, "Save new documents to the store")
	cmd.Flags().String("collection", "documents", "Collection new documents are saved to")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	html, _ := cmd.Flags().GetBool("html")
	selector, _ := cmd.Flags().GetString("selector")
	save, _ := cmd.Flags().GetBool("save")
	collection, _ := cmd.Flags().GetString("collection")

	filter, st, err := newFilter(cmd.Context(), settings, logger, save)
	if err != nil {
		return err
	}

	engine := go_scrapy.NewEngine(&go_scrapy.EngineConfig{Logger: logger})
	engine.RegisterPipeline(&pipelines.DedupPipeline{Filter: filter, Logger: logger})
	if save {
		engine.RegisterPipeline(&pipelines.StoragePipeline{Sink: st, Logger: logger})
	} else if st != nil {
		defer st.Close()
	}
	engine.Open()
	defer engine.Close()

	for _, name := range args {
		content, err := readContent(cmd, name, html, selector)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		doc := &pipelines.Document{Collection: collection, URL: name, Content: content}
		status := "new"
		if err := engine.AddItem(doc); err != nil {
			if !errors.Is(err, go_scrapy.DropItemErr) {
				return err
			}
			status = "duplicate"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, status, doc.MD5)
	}
	return nil
}
