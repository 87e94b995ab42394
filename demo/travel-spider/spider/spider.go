package spider

import (
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	go_scrapy "github.com/siskinc/zijiyou"
	"github.com/siskinc/zijiyou/pipelines"
)

const (
	ConfigUrlInfo = "info"
	Collection    = "travel_notes"
)

const (
	ConfigUrlInfoPage int = iota
	ConfigUrlInfoDetail
)

// TravelSpider walks note list pages and yields one Document per note.
type TravelSpider struct {
	ListSelector    string
	NextSelector    string
	ContentSelector string
}

func (spider *TravelSpider) Parse(crawl *go_scrapy.Engine, resp *go_scrapy.Response) {
	httpResp := resp.HttpResponse
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		logrus.Errorf("url %s, StatusCode is %d", httpResp.Request.URL, httpResp.StatusCode)
		return
	}
	document, err := goquery.NewDocumentFromReader(httpResp.Body)
	if err != nil {
		logrus.Errorf("new document from reader is err: %v", err)
		return
	}
	urlInfo, _ := resp.Config[ConfigUrlInfo].(int)
	switch urlInfo {
	case ConfigUrlInfoPage:
		spider.ParsePage(crawl, httpResp.Request.URL, document)
	case ConfigUrlInfoDetail:
		spider.ParseDetail(crawl, httpResp.Request.URL, document)
	default:
		logrus.Errorf("url info %d of %s is neither page nor detail", urlInfo, httpResp.Request.URL)
	}
}

func (spider *TravelSpider) ParsePage(crawl *go_scrapy.Engine, base *url.URL, document *goquery.Document) {
	follow := func(selector string, info int) {
		document.Find(selector).Each(func(i int, selection *goquery.Selection) {
			href, exist := selection.Attr("href")
			if !exist {
				return
			}
			link, err := base.Parse(href)
			if nil != err {
				logrus.Errorf("parse link %s is err: %v", href, err)
				return
			}
			httpReq, err := http.NewRequest(http.MethodGet, link.String(), nil)
			if nil != err {
				logrus.Errorf("new request is err: %v", err)
				return
			}
			crawl.AddRequest(&go_scrapy.Request{
				HttpRequest: httpReq,
				Config:      map[string]interface{}{ConfigUrlInfo: info},
			})
		})
	}
	follow(spider.ListSelector, ConfigUrlInfoDetail)
	follow(spider.NextSelector, ConfigUrlInfoPage)
}

func (spider *TravelSpider) ParseDetail(crawl *go_scrapy.Engine, page *url.URL, document *goquery.Document) {
	item := &pipelines.Document{
		Collection: Collection,
		URL:        page.String(),
		Title:      pipelines.ExtractTitle(document),
		Content:    pipelines.DocumentText(document, spider.ContentSelector),
	}
	_ = crawl.AddItem(item)
}
