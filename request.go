package go_scrapy

import (
	"net/http"

	"github.com/siskinc/zijiyou/fingerprint"
)

type Request struct {
	HttpRequest *http.Request
	Config      map[string]interface{} // 自定义参数
}

// Fingerprint identifies the request by method and canonical URL, so query
// parameter order does not make two requests different.
func (r *Request) Fingerprint() fingerprint.Fingerprint {
	urlFingerPrint := fingerprint.Generate([]string{r.HttpRequest.URL.String()}, true)
	method := r.HttpRequest.Method
	if method == "" || method == http.MethodGet {
		return urlFingerPrint
	}
	return fingerprint.Generate([]string{method, urlFingerPrint.String()}, false)
}
