package go_scrapy

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

type EngineConfig struct {
	SchedulerConfig *SchedulerConfig
	Logger          logrus.FieldLogger
}

// Engine routes requests to the scheduler, fetched responses to the spider
// and items through the pipelines. Fetching is left to the caller: it takes
// requests from NextRequest and hands responses back through Process.
type Engine struct {
	scheduler Scheduler
	spider    Spider
	pipelines []ItemPipeline
	logger    logrus.FieldLogger
}

func NewEngine(config *EngineConfig) *Engine {
	if config == nil {
		config = &EngineConfig{}
	}
	engine := &Engine{
		scheduler: NewDupeFilterScheduler(config.SchedulerConfig),
		logger:    config.Logger,
	}
	if engine.logger == nil {
		engine.logger = logrus.StandardLogger()
	}
	return engine
}

func (e *Engine) SetScheduler(scheduler Scheduler) {
	e.scheduler = scheduler
}

func (e *Engine) AddRequest(r *Request) bool {
	if !e.scheduler.AddRequest(r) {
		e.logger.Debugf("duplicate request %s %s is ignored", r.HttpRequest.Method, r.HttpRequest.URL)
		return false
	}
	return true
}

func (e *Engine) NextRequest(ctx context.Context) (*Request, error) {
	return e.scheduler.NextRequest(ctx)
}

// Process hands a fetched response to the spider.
func (e *Engine) Process(resp *Response) {
	e.spider.Parse(e, resp)
}

// AddItem runs item through the pipelines. It returns the error of the
// pipeline that dropped or rejected it.
func (e *Engine) AddItem(item interface{}) error {
	for _, pipeline := range e.pipelines {
		err := pipeline.ProcessItem(item, e.spider)
		if errors.Is(err, DropItemErr) {
			e.logger.Debugf("item dropped: %v", err)
			return err
		}
		if err != nil {
			e.logger.Errorf("pipeline %T process item is err: %v", pipeline, err)
			return err
		}
	}
	return nil
}

func (e *Engine) RegisterSpider(spider Spider) {
	e.spider = spider
}

func (e *Engine) RegisterPipeline(pipelines ...ItemPipeline) {
	for i := range pipelines {
		pipelines[i].FromCrawler(e)
		e.pipelines = append(e.pipelines, pipelines[i])
	}
}

func (e *Engine) Open() {
	for _, pipeline := range e.pipelines {
		pipeline.OpenSpider(e.spider)
	}
}

func (e *Engine) Close() {
	for _, pipeline := range e.pipelines {
		pipeline.CloseSpider(e.spider)
	}
}
