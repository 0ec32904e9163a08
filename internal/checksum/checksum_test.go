package checksum

import (
	"strings"
	"testing"
)

func TestSumIsStable(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Errorf("digests differ: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
	if Sum([]byte("world")) == a {
		t.Error("different inputs produced the same digest")
	}
}

func TestETag(t *testing.T) {
	tag := ETag([]byte("<html></html>"))
	if !strings.HasPrefix(tag, `"`) || !strings.HasSuffix(tag, `"`) {
		t.Errorf("ETag not quoted: %s", tag)
	}
	if len(tag) != 34 {
		t.Errorf("ETag length = %d, want 34", len(tag))
	}
	if ETag([]byte("<html></html>")) != tag {
		t.Error("ETag not deterministic")
	}
}
