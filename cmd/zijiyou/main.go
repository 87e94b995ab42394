// Package main provides the zijiyou command line.
//
// Usage:
//
//	zijiyou fingerprint --url "http://x.com/a?b=2&a=1"
//	zijiyou top -n 10 article.txt
//	zijiyou check --html --save pages/*.html
//	zijiyou serve
package main

func main() {
	Execute()
}
