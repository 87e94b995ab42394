package go_scrapy

import (
	"errors"
	"fmt"
)

var (
	DropItemErr = errors.New("drop item")
)

// ItemPipeline processes every item a spider yields, in registration order.
// Returning an error wrapping DropItemErr stops the item there.
type ItemPipeline interface {
	OpenSpider(spider Spider)
	CloseSpider(spider Spider)
	FromCrawler(crawler *Engine)
	ProcessItem(item interface{}, spider Spider) error
}

// DropItem returns an error wrapping DropItemErr with a reason.
func DropItem(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", DropItemErr, fmt.Sprintf(format, args...))
}
