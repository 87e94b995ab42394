package dedup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/siskinc/zijiyou/fingerprint"
)

type memorySource map[string][]map[string]interface{}

func (m memorySource) FindRecordsWithField(_ context.Context, collection, field string) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	for _, record := range m[collection] {
		if _, ok := record[field]; ok {
			records = append(records, record)
		}
	}
	return records, nil
}

type brokenSource struct{}

func (brokenSource) FindRecordsWithField(context.Context, string, string) ([]map[string]interface{}, error) {
	return nil, errors.New("connection refused")
}

func newTestFilter(t *testing.T, opts Options) *Filter {
	t.Helper()
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	f, err := NewFilter(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewFilter is err: %v", err)
	}
	return f
}

func TestCheckDuplicate(t *testing.T) {
	f := newTestFilter(t, Options{})

	dup, fp1 := f.CheckDuplicate("Sentence A. Sentence B.")
	if dup {
		t.Fatal("first document reported as duplicate")
	}
	want := fingerprint.Generate([]string{" Sentence B", "Sentence A", ""}, false)
	if fp1 != want {
		t.Errorf("fingerprint = %s, want %s", fp1, want)
	}

	dup, again := f.CheckDuplicate("Sentence A. Sentence B.")
	if !dup || again != fp1 {
		t.Errorf("repeat = (%v, %s), want (true, %s)", dup, again, fp1)
	}

	dup, fp2 := f.CheckDuplicate("Something else entirely。完全不同的内容")
	if dup || fp2 == fp1 {
		t.Errorf("different content = (%v, %s), want (false, not %s)", dup, fp2, fp1)
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
}

func TestCheckDuplicateDelimiterInsensitive(t *testing.T) {
	f := newTestFilter(t, Options{})
	f.CheckDuplicate("A long opening sentence, short. Another long closing sentence")
	dup, _ := f.CheckDuplicate("A long opening sentence. short, Another long closing sentence")
	if !dup {
		t.Error("same segments split by different delimiters should be a duplicate")
	}
	dup, _ = f.CheckDuplicate("A long opening sentence, short. Another long closing sentence!")
	if !dup {
		t.Error("a trailing empty segment should not change the fingerprint")
	}
}

func TestCheckNone(t *testing.T) {
	f := newTestFilter(t, Options{})
	if f.Check(fingerprint.None) || f.Check(fingerprint.None) {
		t.Error("None reported as duplicate")
	}
	if f.Len() != 0 || f.Seen(fingerprint.None) {
		t.Error("None must never be remembered")
	}
}

func TestNewFilterEmptyWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	f := newTestFilter(t, Options{Logger: logger})
	if f.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", f.Len())
	}
	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings == 0 {
		t.Error("expected a warning for an unseeded filter")
	}
}

func TestNewFilterSeeds(t *testing.T) {
	seed := fingerprint.Generate([]string{"known"}, false)
	f := newTestFilter(t, Options{
		Seeds:       []string{string(seed)},
		Collections: []string{"ignored"},
		Source:      brokenSource{},
	})
	if !f.Seen(seed) || f.Len() != 1 {
		t.Errorf("seed not loaded, Len() = %d", f.Len())
	}
}

func TestNewFilterSkipsEmptySeeds(t *testing.T) {
	logger, hook := test.NewNullLogger()
	seed := fingerprint.Generate([]string{"known"}, false)
	f := newTestFilter(t, Options{
		Seeds:  []string{"", string(fingerprint.None), string(seed)},
		Logger: logger,
	})
	if f.Len() != 1 || !f.Seen(seed) {
		t.Errorf("Len() = %d, want only the real seed", f.Len())
	}
	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "skip 2 empty seed fingerprints" {
			found = true
		}
	}
	if !found {
		t.Error("skipped seeds were not logged")
	}
}

func TestNewFilterBulkLoad(t *testing.T) {
	source := memorySource{
		"articles": {
			{"md5": "0cc175b9c0f1b6a831c399e269772661", "title": "a"},
			{"title": "no fingerprint"},
			{"md5": 42},
		},
		"notes": {
			{"md5": "92eb5ffee6ae2fec3ad71c777531578f"},
		},
	}
	f := newTestFilter(t, Options{Collections: []string{"articles", "notes"}, Source: source})
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
	if !f.Seen("92eb5ffee6ae2fec3ad71c777531578f") {
		t.Error("fingerprint from notes not loaded")
	}
}

func TestNewFilterCustomField(t *testing.T) {
	source := memorySource{"pages": {{"digest": "0cc175b9c0f1b6a831c399e269772661"}}}
	f := newTestFilter(t, Options{Collections: []string{"pages"}, Source: source, Field: "digest"})
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
}

func TestNewFilterErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewFilter(context.Background(), Options{Collections: []string{"a"}, Logger: logger})
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}
	_, err = NewFilter(context.Background(), Options{Collections: []string{"a"}, Source: brokenSource{}, Logger: logger})
	if err == nil {
		t.Error("source failure must abort construction")
	}
}

func TestBulkSeedEquivalence(t *testing.T) {
	docs := []string{
		"第一篇文章，内容很长很长。第二句话",
		"Completely unrelated text. With two sentences.",
	}
	inputs := []string{docs[0], docs[1], "A brand new document."}

	var seeds []string
	var records []map[string]interface{}
	for _, doc := range docs {
		fp := fingerprint.Generate(TopSentences(doc, DefaultTopN, ""), false)
		seeds = append(seeds, string(fp))
		records = append(records, map[string]interface{}{"md5": string(fp)})
	}

	seeded := newTestFilter(t, Options{Seeds: seeds})
	loaded := newTestFilter(t, Options{Collections: []string{"docs"}, Source: memorySource{"docs": records}})

	for _, content := range inputs {
		a, fpa := seeded.CheckDuplicate(content)
		b, fpb := loaded.CheckDuplicate(content)
		if a != b || fpa != fpb {
			t.Errorf("%q: seeded (%v, %s) != loaded (%v, %s)", content, a, fpa, b, fpb)
		}
	}
}

func TestCheckDuplicateConcurrent(t *testing.T) {
	f := newTestFilter(t, Options{})
	const workers = 32
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if dup, _ := f.CheckDuplicate("同一篇文章。Same article."); !dup {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if fresh != 1 {
		t.Errorf("%d workers saw the document as new, want exactly 1", fresh)
	}
}
