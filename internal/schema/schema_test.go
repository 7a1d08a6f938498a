package schema

import "testing"

func TestHashDeterministic(t *testing.T) {
	files := map[string][]byte{
		"a.go": []byte("package a"),
		"b.go": []byte("package b"),
	}
	h1 := Hash(files)
	h2 := Hash(files)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %s != %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Fatalf("expected 16 hex chars (64 bits), got %d: %s", len(h1), h1)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	h1 := Hash(map[string][]byte{"a.go": []byte("v1")})
	h2 := Hash(map[string][]byte{"a.go": []byte("v2")})
	if h1 == h2 {
		t.Fatal("expected different hashes for different content")
	}
}

func TestCheckMismatch(t *testing.T) {
	if err := Check("abc", ""); err == nil {
		t.Fatal("expected mismatch error for empty stored hash")
	}
	if err := Check("abc", "def"); err == nil {
		t.Fatal("expected mismatch error for differing hashes")
	}
	if err := Check("abc", "abc"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}
