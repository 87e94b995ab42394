package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint is the hex encoded md5 digest of an ordered list of strings.
type Fingerprint string

// None is returned when there is nothing to fingerprint. It never equals a digest.
const None Fingerprint = "0"

func (f Fingerprint) String() string {
	return string(f)
}

// Valid reports whether f is a real digest rather than None or garbage.
func (f Fingerprint) Valid() bool {
	return Hex(string(f))
}

// Hex reports whether s looks like an md5 hex digest.
func Hex(s string) bool {
	if len(s) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Generate hashes inputs in order. With isURL every input is canonicalized
// first and its query pairs are sorted, so parameter order does not matter.
func Generate(inputs []string, isURL bool) Fingerprint {
	if isURL {
		inputs = expandURLs(inputs)
	}
	if len(inputs) < 1 {
		return None
	}
	hasher := md5.New()
	for _, input := range inputs {
		hasher.Write([]byte(input))
	}
	return Fingerprint(hex.EncodeToString(hasher.Sum(nil)))
}

func expandURLs(urls []string) []string {
	var tokens []string
	for _, u := range urls {
		parts := strings.Split(Canonicalize(u), "?")
		if len(parts) != 2 {
			// 没有参数
			tokens = append(tokens, parts...)
			continue
		}
		tokens = append(tokens, parts[0])
		pairs := strings.Split(parts[1], "&")
		sort.Strings(pairs)
		tokens = append(tokens, pairs...)
	}
	return tokens
}
