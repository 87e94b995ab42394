package pipelines

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	go_scrapy "github.com/siskinc/zijiyou"
	"github.com/siskinc/zijiyou/store"
)

var ErrNoCollection = errors.New("document has no collection")

// StoragePipeline saves every document to its collection.
type StoragePipeline struct {
	Sink   store.Sink
	Logger logrus.FieldLogger
}

func (p *StoragePipeline) OpenSpider(spider go_scrapy.Spider) {}

func (p *StoragePipeline) CloseSpider(spider go_scrapy.Spider) {
	if err := p.Sink.Close(); err != nil {
		p.logger().Errorf("close store is err: %v", err)
	}
}

func (p *StoragePipeline) FromCrawler(crawler *go_scrapy.Engine) {}

func (p *StoragePipeline) ProcessItem(item interface{}, spider go_scrapy.Spider) error {
	doc, ok := item.(*Document)
	if !ok {
		return nil
	}
	if doc.Collection == "" {
		p.logger().Errorf("document %s has no collection", doc.URL)
		return ErrNoCollection
	}
	if err := p.Sink.Save(context.Background(), doc.Collection, doc.Record()); err != nil {
		return fmt.Errorf("save %s to %s: %w", doc.URL, doc.Collection, err)
	}
	p.logger().WithFields(logrus.Fields{"collection": doc.Collection, "url": doc.URL}).Debug("document saved")
	return nil
}

func (p *StoragePipeline) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
