package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	go_scrapy "github.com/siskinc/zijiyou"
	"github.com/siskinc/zijiyou/config"
	"github.com/siskinc/zijiyou/dedup"
	"github.com/siskinc/zijiyou/demo/travel-spider/spider"
	"github.com/siskinc/zijiyou/pipelines"
	"github.com/siskinc/zijiyou/store"
)

func main() {
	configPath := flag.String("config", "", "config file")
	startUrl := flag.String("url", "http://www.zijiyou.com/notes/list", "first list page")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if nil != err {
		logrus.Fatalf("load config is err: %v", err)
	}
	logger := settings.Log.NewLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, settings.Store, logger)
	if nil != err {
		logger.Fatalf("open store is err: %v", err)
	}
	filter, err := dedup.NewFilter(ctx, settings.FilterOptions(st, logger))
	if nil != err {
		logger.Fatalf("new dedup filter is err: %v", err)
	}

	engine := go_scrapy.NewEngine(&go_scrapy.EngineConfig{
		SchedulerConfig: &go_scrapy.SchedulerConfig{ReqQueueLen: 10000},
		Logger:          logger,
	})
	engine.RegisterSpider(&spider.TravelSpider{
		ListSelector:    ".note-list a.title",
		NextSelector:    ".pager a.next",
		ContentSelector: ".note-content p",
	})
	engine.RegisterPipeline(
		&pipelines.DedupPipeline{Filter: filter, Logger: logger},
		&pipelines.StoragePipeline{Sink: st, Logger: logger},
	)
	engine.Open()
	defer engine.Close()

	httpReq, err := http.NewRequest(http.MethodGet, *startUrl, nil)
	if nil != err {
		logger.Fatalf("new request is err: %v", err)
	}
	engine.AddRequest(&go_scrapy.Request{
		HttpRequest: httpReq,
		Config:      map[string]interface{}{spider.ConfigUrlInfo: spider.ConfigUrlInfoPage},
	})

	// 抓取由调用方负责, 这里只是最简单的串行抓取
	client := &http.Client{Timeout: 30 * time.Second}
	for {
		idleCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		req, err := engine.NextRequest(idleCtx)
		cancel()
		if nil != err {
			logger.Infof("no more requests: %v", err)
			return
		}
		resp, err := client.Do(req.HttpRequest.WithContext(ctx))
		if nil != err {
			logger.Errorf("%s %s is err: %v", req.HttpRequest.Method, req.HttpRequest.URL, err)
			continue
		}
		engine.Process(go_scrapy.NewResponse(req, resp))
	}
}
