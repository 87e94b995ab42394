package pipelines

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	go_scrapy "github.com/siskinc/zijiyou"
	"github.com/siskinc/zijiyou/dedup"
)

// DedupPipeline drops documents whose content was already seen and stamps
// the content fingerprint on the ones it lets through.
type DedupPipeline struct {
	Filter *dedup.Filter
	Logger logrus.FieldLogger

	dropped atomic.Uint64
}

func (p *DedupPipeline) OpenSpider(spider go_scrapy.Spider) {}

func (p *DedupPipeline) Dropped() uint64 {
	return p.dropped.Load()
}

func (p *DedupPipeline) CloseSpider(spider go_scrapy.Spider) {
	p.logger().Infof("dedup pipeline closed, %d duplicates dropped, %d fingerprints known", p.dropped.Load(), p.Filter.Len())
}

func (p *DedupPipeline) FromCrawler(crawler *go_scrapy.Engine) {}

func (p *DedupPipeline) ProcessItem(item interface{}, spider go_scrapy.Spider) error {
	doc, ok := item.(*Document)
	if !ok {
		return nil
	}
	isDup, md5 := p.Filter.CheckDuplicate(doc.Content)
	doc.MD5 = md5
	if isDup {
		p.dropped.Add(1)
		p.logger().WithFields(logrus.Fields{"url": doc.URL, "md5": md5}).Info("duplicate document")
		return go_scrapy.DropItem("document %s duplicates %s", doc.URL, md5)
	}
	return nil
}

func (p *DedupPipeline) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
