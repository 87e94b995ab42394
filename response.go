package go_scrapy

import "net/http"

type Response struct {
	HttpResponse *http.Response
	Config       map[string]interface{} // 自定义参数, copied from the Request
}

// NewResponse pairs a fetched response with the request that produced it.
func NewResponse(req *Request, resp *http.Response) *Response {
	return &Response{HttpResponse: resp, Config: req.Config}
}
