package pipelines

import (
	"github.com/siskinc/zijiyou/fingerprint"
	"github.com/siskinc/zijiyou/store"
)

// Document is the item spiders yield for every scraped page.
type Document struct {
	Collection string
	URL        string
	Title      string
	Content    string
	MD5        fingerprint.Fingerprint
	Fields     map[string]interface{}
}

// Record flattens the document for the store. Fields never override the
// named attributes.
func (d *Document) Record() store.Record {
	record := store.Record{}
	for k, v := range d.Fields {
		record[k] = v
	}
	record["url"] = d.URL
	record["title"] = d.Title
	record["content"] = d.Content
	if d.MD5.Valid() {
		record["md5"] = d.MD5.String()
	}
	return record
}
