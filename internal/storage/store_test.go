// store_test.go - Tests for the staging store
package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func readAll(t *testing.T, s Store, id string) string {
	t.Helper()
	rc, err := s.Open(id)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", id, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", id, err)
	}
	return string(data)
}

func TestMemoryStore_Save(t *testing.T) {
	t.Run("saves content from reader", func(t *testing.T) {
		store := NewMemoryStore(0)

		info, err := store.Save("table.md", strings.NewReader("| a |"))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "table.md" {
			t.Errorf("Expected name 'table.md', got %v", info.Name)
		}
		if info.Size != 5 {
			t.Errorf("Expected size 5, got %d", info.Size)
		}
		if got := readAll(t, store, info.ID); got != "| a |" {
			t.Errorf("Expected content '| a |', got %q", got)
		}
	})

	t.Run("refuses content over the limit", func(t *testing.T) {
		store := NewMemoryStore(4)

		_, err := store.Save("big.md", strings.NewReader("12345"))
		if !errors.Is(err, ErrTooLarge) {
			t.Fatalf("Expected ErrTooLarge, got %v", err)
		}
		if list, _ := store.List(0); len(list) != 0 {
			t.Errorf("Expected nothing staged, got %d files", len(list))
		}
	})

	t.Run("accepts content at the limit", func(t *testing.T) {
		store := NewMemoryStore(4)

		if _, err := store.Save("ok.md", strings.NewReader("1234")); err != nil {
			t.Fatalf("Expected content at the limit to be accepted: %v", err)
		}
	})
}

func TestMemoryStore_SaveEncoded(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte("# compressed"))
	zw.Close()

	tests := []struct {
		name     string
		data     string
		encoding string
		want     string
		wantErr  bool
	}{
		{"plain base64", base64.StdEncoding.EncodeToString([]byte("# hi")), EncodingBase64, "# hi", false},
		{"default encoding", base64.StdEncoding.EncodeToString([]byte("# hi")), "", "# hi", false},
		{"gzip", base64.StdEncoding.EncodeToString(gz.Bytes()), EncodingBase64Gzip, "# compressed", false},
		{"gzip without magic", base64.StdEncoding.EncodeToString([]byte("# hi")), EncodingBase64Gzip, "", true},
		{"bad base64", "!!!", EncodingBase64, "", true},
		{"unknown encoding", "", "zstd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(0)
			info, err := store.SaveEncoded("a.md", tt.data, tt.encoding)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := readAll(t, store, info.ID); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMemoryStore_GetDelete(t *testing.T) {
	store := NewMemoryStore(0)
	info, _ := store.Save("a.md", strings.NewReader("x"))

	got, err := store.Get(info.ID)
	if err != nil || got.Name != "a.md" {
		t.Fatalf("Expected to get a.md, got %v, %v", got, err)
	}

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.Get(info.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.Open(info.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on open after delete, got %v", err)
	}
	if err := store.Delete(info.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_ListAndCleanup(t *testing.T) {
	store := NewMemoryStore(0)
	old, _ := store.Save("old.md", strings.NewReader("1"))
	store.files[old.ID].StagedAt = time.Now().Add(-time.Hour)
	fresh, _ := store.Save("fresh.md", strings.NewReader("2"))

	list, _ := store.List(1)
	if len(list) != 1 || list[0].ID != fresh.ID {
		t.Fatalf("Expected newest file first, got %v", list)
	}

	if n := store.Cleanup(30 * time.Minute); n != 1 {
		t.Errorf("Expected 1 file cleaned up, got %d", n)
	}
	if _, err := store.Get(old.ID); err == nil {
		t.Error("Expected old file to be removed")
	}

	store.Clear()
	if list, _ := store.List(0); len(list) != 0 {
		t.Errorf("Expected empty store after Clear, got %d", len(list))
	}
}

func TestDescriptor(t *testing.T) {
	store := NewMemoryStore(0)
	info, _ := store.Save("a.md", strings.NewReader("# a"))

	fd := Descriptor(store, info, 42)
	if fd.ID != info.ID || fd.Name != "a.md" || fd.Size != 42 {
		t.Fatalf("Unexpected descriptor %+v", fd)
	}
	rc, err := fd.Content.Open()
	if err != nil {
		t.Fatalf("Failed to open content: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "# a" {
		t.Errorf("Expected '# a', got %q", data)
	}
}
