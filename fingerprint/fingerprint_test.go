package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func md5Hex(s string) Fingerprint {
	sum := md5.Sum([]byte(s))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

func TestGenerateText(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   Fingerprint
	}{
		{"empty", nil, None},
		{"empty slice", []string{}, None},
		{"single", []string{"hello"}, md5Hex("hello")},
		{"chunks are concatenated", []string{"hel", "lo"}, md5Hex("hello")},
		{"empty string is still content", []string{""}, md5Hex("")},
		{"chinese", []string{"测试", "很好的"}, md5Hex("测试很好的")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.inputs, false); got != tt.want {
				t.Errorf("Generate(%q) = %s, want %s", tt.inputs, got, tt.want)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	inputs := []string{"Sentence A", " Sentence B", ""}
	first := Generate(inputs, false)
	for i := 0; i < 10; i++ {
		if got := Generate(inputs, false); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
	if !first.Valid() {
		t.Errorf("%s is not a valid digest", first)
	}
}

func TestGenerateOrderSensitive(t *testing.T) {
	if Generate([]string{"ab", "c"}, false) == Generate([]string{"c", "ab"}, false) {
		t.Error("text fingerprint must depend on input order")
	}
}

func TestGenerateURL(t *testing.T) {
	t.Run("query order invariance", func(t *testing.T) {
		a := Generate([]string{"http://x.com/a?b=2&a=1"}, true)
		b := Generate([]string{"http://x.com/a?a=1&b=2"}, true)
		if a != b {
			t.Errorf("%s != %s", a, b)
		}
	})
	t.Run("path sensitivity", func(t *testing.T) {
		a := Generate([]string{"http://x.com/a"}, true)
		b := Generate([]string{"http://x.com/b"}, true)
		if a == b {
			t.Errorf("different paths share fingerprint %s", a)
		}
	})
	t.Run("host and port normalization", func(t *testing.T) {
		a := Generate([]string{"HTTP://X.COM:80/a/./b/../c#frag"}, true)
		b := Generate([]string{"http://x.com/a/c"}, true)
		if a != b {
			t.Errorf("%s != %s", a, b)
		}
	})
	t.Run("query pairs are hashed after the path", func(t *testing.T) {
		got := Generate([]string{"http://x.com/a?b=2&a=1"}, true)
		want := md5Hex("http://x.com/a" + "a=1" + "b=2")
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if got := Generate(nil, true); got != None {
			t.Errorf("got %s, want None", got)
		}
	})
}

func TestNoneIsNotADigest(t *testing.T) {
	if None.Valid() {
		t.Error("None must not look like a digest")
	}
	if Hex("0") {
		t.Error("Hex(\"0\") = true")
	}
	if !Hex(string(md5Hex("x"))) {
		t.Error("md5 digest not recognized")
	}
}
