// Package dedup detects near duplicate documents by fingerprinting the
// longest sentences of their text.
package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/siskinc/zijiyou/fingerprint"
)

const DefaultField = "md5"

var ErrNoSource = errors.New("dedup: collections given without a source")

// Source is the document store the filter bulk loads fingerprints from.
type Source interface {
	FindRecordsWithField(ctx context.Context, collection, field string) ([]map[string]interface{}, error)
}

type Options struct {
	TopN       int
	Delimiters string
	// Seeds are known fingerprints, used verbatim except for "" and
	// fingerprint.None, which are skipped. They win over Collections.
	Seeds []string
	// Collections are read from Source once, at construction.
	Collections []string
	Field       string
	Source      Source
	Logger      logrus.FieldLogger
}

// Filter remembers the fingerprint of every document it has been shown.
type Filter struct {
	topN       int
	delimiters string
	seen       *Set
	logger     logrus.FieldLogger
}

// NewFilter builds a filter and loads its initial fingerprints. A failing
// Source aborts construction: an empty filter would accept every document.
func NewFilter(ctx context.Context, opts Options) (*Filter, error) {
	f := &Filter{
		topN:       opts.TopN,
		delimiters: opts.Delimiters,
		seen:       NewSet(),
		logger:     opts.Logger,
	}
	if f.topN <= 0 {
		f.topN = DefaultTopN
	}
	if f.delimiters == "" {
		f.delimiters = DefaultDelimiters
	}
	if f.logger == nil {
		f.logger = logrus.StandardLogger()
	}
	field := opts.Field
	if field == "" {
		field = DefaultField
	}

	switch {
	case len(opts.Seeds) > 0:
		skipped := 0
		for _, seed := range opts.Seeds {
			fp := fingerprint.Fingerprint(seed)
			if fp == fingerprint.None || fp == "" {
				skipped++
				continue
			}
			f.seen.Add(fp)
		}
		if skipped > 0 {
			f.logger.Warnf("skip %d empty seed fingerprints", skipped)
		}
		f.logger.Infof("dedup filter seeded with %d fingerprints", f.seen.Len())
	case len(opts.Collections) > 0:
		if opts.Source == nil {
			return nil, ErrNoSource
		}
		if err := f.load(ctx, opts.Source, opts.Collections, field); err != nil {
			return nil, err
		}
		f.logger.Infof("dedup filter loaded %d fingerprints from %v", f.seen.Len(), opts.Collections)
	default:
		f.logger.Warn("no seed fingerprints or source collections configured, every document will be treated as new")
	}
	if f.seen.Len() < 1 {
		f.logger.Warn("dedup filter starts with an empty fingerprint set")
	}
	return f, nil
}

func (f *Filter) load(ctx context.Context, source Source, collections []string, field string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, collection := range collections {
		g.Go(func() error {
			records, err := source.FindRecordsWithField(ctx, collection, field)
			if err != nil {
				return fmt.Errorf("load fingerprints from %s: %w", collection, err)
			}
			skipped := 0
			for _, record := range records {
				value, ok := record[field].(string)
				if !ok {
					skipped++
					continue
				}
				f.seen.Add(fingerprint.Fingerprint(value))
			}
			f.logger.WithFields(logrus.Fields{
				"collection": collection,
				"records":    len(records),
				"skipped":    skipped,
			}).Debug("collection fingerprints loaded")
			return nil
		})
	}
	return g.Wait()
}

// CheckDuplicate fingerprints the top sentences of content. If the
// fingerprint was seen before it reports true and leaves the filter as is,
// otherwise the fingerprint is remembered.
func (f *Filter) CheckDuplicate(content string) (bool, fingerprint.Fingerprint) {
	fp := fingerprint.Generate(f.TopSentences(content, f.topN), false)
	return f.Check(fp), fp
}

// Check is CheckDuplicate for an already computed fingerprint. None is never
// a duplicate and is never remembered.
func (f *Filter) Check(fp fingerprint.Fingerprint) bool {
	return f.seen.CheckAndAdd(fp)
}

func (f *Filter) Seen(fp fingerprint.Fingerprint) bool {
	return f.seen.Contains(fp)
}

func (f *Filter) TopSentences(content string, n int) []string {
	return TopSentences(content, n, f.delimiters)
}

func (f *Filter) Len() int {
	return f.seen.Len()
}

func (f *Filter) Fingerprints() []fingerprint.Fingerprint {
	return f.seen.Slice()
}
