package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func multipartFile(t *testing.T, field, name, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}

func TestSaveAndCleanup(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	staged, err := store.Save(multipartFile(t, "image", "bill.png", "png bytes"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(staged.FileName, "-bill.png") {
		t.Errorf("FileName = %q, want a uuid prefix on the original name", staged.FileName)
	}
	if staged.FileURL != "/uploads/"+staged.FileName {
		t.Errorf("FileURL = %q, want /uploads/%s", staged.FileURL, staged.FileName)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), staged.FileName))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("stored content = %q", data)
	}

	store.Cleanup(staged, nil)
	if _, err := os.Stat(filepath.Join(store.Dir(), staged.FileName)); !os.IsNotExist(err) {
		t.Error("staged file still present after cleanup")
	}
}

func TestSaveDistinctNamesForSameFilename(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a, err := store.Save(multipartFile(t, "image", "photo.jpg", "first"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Save(multipartFile(t, "image", "photo.jpg", "second"))
	if err != nil {
		t.Fatal(err)
	}

	if a.FileName == b.FileName {
		t.Errorf("two uploads of %q collided on %q", "photo.jpg", a.FileName)
	}
}

func TestRemoveByURL(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	staged, err := store.Save(multipartFile(t, "image", "qr.png", "qr"))
	if err != nil {
		t.Fatal(err)
	}

	store.RemoveByURL(staged.FileURL)
	if _, err := os.Stat(filepath.Join(store.Dir(), staged.FileName)); !os.IsNotExist(err) {
		t.Error("file still present after RemoveByURL")
	}

	// Missing files and empty URLs are quietly ignored
	store.RemoveByURL(staged.FileURL)
	store.RemoveByURL("")
}
