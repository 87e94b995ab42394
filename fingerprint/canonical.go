package fingerprint

import (
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// Canonicalize normalizes a URL so that equivalent spellings compare equal:
// lowercase scheme and host, no default port, no dot segments, sorted query,
// no fragment. Input that does not parse is returned unchanged.
func Canonicalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = canonicalHost(u.Scheme, u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Opaque == "" {
		u.RawPath = ""
		u.Path = canonicalPath(u.Path, u.Host != "")
	}
	u.RawQuery = canonicalQuery(u.RawQuery)
	u.ForceQuery = false
	return u.String()
}

func canonicalHost(scheme, host string) string {
	if host == "" {
		return host
	}
	hostname, port, err := net.SplitHostPort(host)
	if err != nil {
		hostname, port = strings.Trim(host, "[]"), ""
	}
	hostname = strings.TrimSuffix(strings.ToLower(hostname), ".")
	if ascii, err := idna.Lookup.ToASCII(hostname); err == nil {
		hostname = ascii
	}
	if port == "" || defaultPorts[scheme] == port {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}
		return hostname
	}
	return net.JoinHostPort(hostname, port)
}

func canonicalPath(p string, hasHost bool) string {
	if p == "" {
		if hasHost {
			return "/"
		}
		return p
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		cleaned = "/"
	}
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}
	return cleaned
}

type queryPair struct {
	key   string
	value string
}

func canonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}
	var pairs []queryPair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		// blank values are kept, "a" becomes "a="
		key, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, queryPair{key: requote(key), value: requote(value)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].key < pairs[j].key
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

func requote(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return url.QueryEscape(unescaped)
}
