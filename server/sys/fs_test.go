package sys

import "testing"

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Log("free bytes", free)

	if _, err := FreeSpace("/this/path/does/not/exist"); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestMissingDependencies(t *testing.T) {
	if missing := MissingDependencies("sh"); len(missing) != 0 {
		t.Fatalf("sh should be available: %v", missing)
	}

	if missing := MissingDependencies("definitely-not-a-real-binary-42", ""); len(missing) != 1 {
		t.Fatalf("expected one missing binary, got %v", missing)
	}
}
