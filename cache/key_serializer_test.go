package cache

import (
	"net/url"
	"testing"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{"plain", "/api/posts", "", "GET:/api/posts?"},
		{"sorted keys", "/api/scholarships", "search=engineering&page=2&limit=5", "GET:/api/scholarships?limit=5&page=2&search=engineering"},
		{"case and slashes", "/API//Scholarships/", "page=1", "GET:/api/scholarships?page=1"},
		{"empty values dropped", "/api/posts", "category=&page=1&search=", "GET:/api/posts?page=1"},
		{"escaped values", "/api/posts", "search=c%2B%2B+basics", "GET:/api/posts?search=c%2B%2B+basics"},
		{"root", "/", "", "GET:/?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			if got := Fingerprint("get", tt.path, q); got != tt.want {
				t.Errorf("Fingerprint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprint_OrderInsensitive(t *testing.T) {
	a, _ := url.ParseQuery("level=masters&country=ghana&page=1")
	b, _ := url.ParseQuery("page=1&country=ghana&level=masters")

	s := NewDefaultKeySerializer()
	if s.SerializeKey("GET", "/api/scholarships", a) != s.SerializeKey("GET", "/api/scholarships", b) {
		t.Error("expected equal fingerprints for reordered parameters")
	}
	if Fingerprint("GET", "/api/scholarships", a) == Fingerprint("GET", "/api/scholarships/featured", a) {
		t.Error("expected distinct fingerprints for distinct paths")
	}
}

func TestLookupKey(t *testing.T) {
	key := LookupKey("categories", "slug", "stem")
	if key != "categories::slug::stem" {
		t.Errorf("unexpected key %q", key)
	}
	if TablePrefix("categories") != "categories::" {
		t.Errorf("unexpected prefix %q", TablePrefix("categories"))
	}
}
