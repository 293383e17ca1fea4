package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, filename, contentType string, payload []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="` + filename + `"`}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	fhs := req.MultipartForm.File["image"]
	require.Len(t, fhs, 1)
	return fhs[0]
}

func TestSaveImageWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	fh := uploadRequest(t, "listing.png", "image/png", []byte("png-bytes"))
	url, err := store.SaveImage(fh)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)
}

func TestSaveImageNamesNeverCollide(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		fh := uploadRequest(t, "a.jpg", "image/jpeg", []byte("x"))
		url, err := store.SaveImage(fh)
		require.NoError(t, err)
		require.False(t, seen[url], "duplicate name %s", url)
		seen[url] = true
	}
}

func TestSaveImageRejectsUnsupportedType(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	fh := uploadRequest(t, "notes.txt", "text/plain", []byte("hello"))
	_, err = store.SaveImage(fh)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveImageFallsBackToExtension(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	fh := uploadRequest(t, "photo.JPEG", "", []byte("jpg-bytes"))
	url, err := store.SaveImage(fh)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(url, ".jpg"))
}

func TestSaveImageRejectsOversize(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	fh := uploadRequest(t, "big.png", "image/png", []byte("x"))
	fh.Size = MaxImageBytes + 1
	_, err = store.SaveImage(fh)
	require.ErrorIs(t, err, ErrImageTooLarge)
}
