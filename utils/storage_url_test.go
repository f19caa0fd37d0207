package utils

import (
	"testing"
	"time"
)

func TestBuildPhotoObjectKey(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	key := BuildPhotoObjectKey("comp-1", "proj-2", "fac-3", "jpg", at)
	expected := "comp-1/proj-2/fac-3/20250314092653.jpg"
	if key != expected {
		t.Fatalf("expected %q, got %q", expected, key)
	}
}

func TestBuildPhotoObjectKey_NormalizesExtension(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if key := BuildPhotoObjectKey("c", "p", "f", ".PNG", at); key != "c/p/f/20250314092653.png" {
		t.Fatalf("dotted uppercase extension: got %q", key)
	}
	if key := BuildPhotoObjectKey("c", "p", "f", "", at); key != "c/p/f/20250314092653.jpg" {
		t.Fatalf("empty extension should default to jpg: got %q", key)
	}
}

func TestBuildQuotePdfObjectKey(t *testing.T) {
	key := BuildQuotePdfObjectKey("comp-1", "quote-9", 3)
	if key != "pdfs/comp-1/quote-9/v3.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestExtractObjectKeyFromURL(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"comp/proj/fac/x.jpg", "comp/proj/fac/x.jpg"},
		{"comp/../secret", ""},
		{"gs://bucket/comp/proj/fac/x.jpg", "comp/proj/fac/x.jpg"},
		{"https://storage.googleapis.com/bucket/comp/proj/fac/x.jpg", "comp/proj/fac/x.jpg"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractObjectKeyFromURL(tc.in); got != tc.expected {
			t.Fatalf("ExtractObjectKeyFromURL(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
