package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/siskinc/zijiyou/config"
	"github.com/siskinc/zijiyou/dedup"
	"github.com/siskinc/zijiyou/pipelines"
	"github.com/siskinc/zijiyou/store"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zijiyou",
		Short: "Near duplicate detection for scraped documents",
		Long: `zijiyou fingerprints scraped text and URLs and tells whether a document
duplicates one seen before, in this run or in the document store.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default is ./zijiyou.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Override the configured log level")

	cmd.AddCommand(NewFingerprintCmd())
	cmd.AddCommand(NewTopCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the configuration named by --config and builds the logger.
func loadSettings(cmd *cobra.Command) (config.Settings, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(path)
	if err != nil {
		return settings, nil, fmt.Errorf("load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		settings.Log.Level = level
	}
	logger := settings.Log.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return settings, logger, nil
}

// newFilter opens the store only when the filter has to bulk load from it
// or when needStore is set. The returned store may be nil.
func newFilter(ctx context.Context, settings config.Settings, logger logrus.FieldLogger, needStore bool) (*dedup.Filter, store.Store, error) {
	var st store.Store
	loadsFromStore := len(settings.Dedup.Seeds) == 0 && len(settings.Dedup.Collections) > 0
	if needStore || loadsFromStore {
		var err error
		st, err = store.Open(ctx, settings.Store, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
	}
	var source dedup.Source
	if st != nil {
		source = st
	}
	filter, err := dedup.NewFilter(ctx, settings.FilterOptions(source, logger))
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, nil, err
	}
	return filter, st, nil
}

// readContent reads a file, or stdin for "-", extracting the text of html.
func readContent(cmd *cobra.Command, name string, html bool, selector string) (string, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	if html {
		return pipelines.ExtractText(r, selector)
	}
	data, err := io.ReadAll(r)
	return string(data), err
}
