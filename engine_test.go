package go_scrapy

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

type recordPipeline struct {
	items  []interface{}
	drop   bool
	opened bool
	closed bool
	engine *Engine
}

func (p *recordPipeline) OpenSpider(spider Spider) { p.opened = true }
func (p *recordPipeline) CloseSpider(spider Spider) { p.closed = true }
func (p *recordPipeline) FromCrawler(crawler *Engine) {
	p.engine = crawler
}

func (p *recordPipeline) ProcessItem(item interface{}, spider Spider) error {
	p.items = append(p.items, item)
	if p.drop {
		return DropItem("item %v", item)
	}
	return nil
}

type echoSpider struct{}

func (echoSpider) Parse(crawl *Engine, resp *Response) {
	_ = crawl.AddItem(resp.Config["item"])
}

func TestEngine(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := NewEngine(&EngineConfig{Logger: logger})
	dropper := &recordPipeline{drop: true}
	after := &recordPipeline{}
	engine.RegisterSpider(echoSpider{})
	engine.RegisterPipeline(dropper, after)

	if dropper.engine != engine {
		t.Error("FromCrawler not called on register")
	}
	engine.Open()

	req, _ := http.NewRequest(http.MethodGet, "http://x.com", nil)
	request := &Request{HttpRequest: req, Config: map[string]interface{}{"item": "a"}}
	engine.Process(NewResponse(request, &http.Response{StatusCode: http.StatusOK, Request: req}))

	if len(dropper.items) != 1 || dropper.items[0] != "a" {
		t.Errorf("dropper saw %v", dropper.items)
	}
	if len(after.items) != 0 {
		t.Errorf("dropped item reached the next pipeline: %v", after.items)
	}

	err := engine.AddItem("b")
	if !errors.Is(err, DropItemErr) {
		t.Errorf("AddItem err = %v, want DropItemErr", err)
	}

	engine.Close()
	if !dropper.opened || !dropper.closed || !after.closed {
		t.Error("pipelines not opened and closed")
	}
}

func TestEngineDeduplicatesRequests(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := NewEngine(&EngineConfig{Logger: logger, SchedulerConfig: &SchedulerConfig{ReqQueueLen: 4}})
	a, _ := http.NewRequest(http.MethodGet, "http://x.com/?a=1&b=2", nil)
	b, _ := http.NewRequest(http.MethodGet, "http://x.com/?b=2&a=1", nil)
	if !engine.AddRequest(&Request{HttpRequest: a}) {
		t.Error("first request not scheduled")
	}
	if engine.AddRequest(&Request{HttpRequest: b}) {
		t.Error("permuted query scheduled twice")
	}
}

type linkSpider struct {
	links []string
}

func (s linkSpider) Parse(crawl *Engine, resp *Response) {
	for _, link := range s.links {
		req, _ := http.NewRequest(http.MethodGet, link, nil)
		crawl.AddRequest(&Request{HttpRequest: req})
	}
}

func TestEngineProcessQueuesMoreLinksThanQueueLen(t *testing.T) {
	logger, _ := test.NewNullLogger()
	links := []string{"http://x.com/1", "http://x.com/2", "http://x.com/3"}
	engine := NewEngine(&EngineConfig{Logger: logger})
	engine.RegisterSpider(linkSpider{links: links})

	req, _ := http.NewRequest(http.MethodGet, "http://x.com/", nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Process(NewResponse(&Request{HttpRequest: req}, &http.Response{StatusCode: http.StatusOK, Request: req}))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Process blocked while the spider queued links")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for _, want := range links {
		next, err := engine.NextRequest(ctx)
		if err != nil {
			t.Fatalf("NextRequest is err: %v", err)
		}
		if next.HttpRequest.URL.String() != want {
			t.Errorf("next request = %s, want %s", next.HttpRequest.URL, want)
		}
	}
}
