package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text"}

	tests := []struct {
		name        string
		format      string
		supported   []string
		expectError bool
	}{
		{"valid json", "json", supported, false},
		{"valid text", "text", supported, false},
		{"unsupported format", "yaml", supported, true},
		{"case sensitive", "JSON", supported, true},
		{"empty format", "", supported, true},
		{"no restrictions allows anything", "yaml", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.expectError && err == nil {
				t.Error("expected error, got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileProcessorReadFile(t *testing.T) {
	fp := NewFileProcessor(nil)

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	content, err := fp.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q, want hello", content)
	}

	if _, err := fp.ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileProcessorWriteFileCreatesDirectories(t *testing.T) {
	fp := NewFileProcessor(nil)

	path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	if err := fp.WriteFile(path, `{"ok":true}`); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q", data)
	}
}

func TestValidateAndReadFiles(t *testing.T) {
	fp := NewFileProcessor(nil)

	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.md")
	if err := os.WriteFile(first, []byte("one"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}

	contents, err := fp.ValidateAndReadFiles(first, second)
	if err != nil {
		t.Fatalf("ValidateAndReadFiles: %v", err)
	}
	if len(contents) != 2 || contents[0] != "one" || contents[1] != "two" {
		t.Errorf("contents = %v", contents)
	}

	if _, err := fp.ValidateAndReadFiles(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing input file")
	}
}
