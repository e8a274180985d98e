package images_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niklauzi/lyte/internal/images"
)

// uploadHeader builds a real multipart.FileHeader the way a handler would
// receive one.
func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("images", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"][0]
}

func TestSave(t *testing.T) {
	store, err := images.NewStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save(uploadHeader(t, "photo.PNG", "fake image bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, images.RefPrefix))
	assert.True(t, strings.HasSuffix(ref, ".png"), "extension is normalized to lower case")
	assert.NotContains(t, ref, "photo", "original filename never reaches disk")

	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(ref, images.RefPrefix)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveUniqueNames(t *testing.T) {
	store, err := images.NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(uploadHeader(t, "a.jpg", "one"))
	require.NoError(t, err)
	second, err := store.Save(uploadHeader(t, "a.jpg", "two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSaveRejectsUnsupportedTypes(t *testing.T) {
	store, err := images.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, filename := range []string{"script.js", "page.html", "noextension", "archive.tar.gz"} {
		t.Run(filename, func(t *testing.T) {
			_, err := store.Save(uploadHeader(t, filename, "payload"))
			assert.ErrorIs(t, err, images.ErrUnsupportedType)
		})
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := images.NewStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(uploadHeader(t, "a.webp", "bytes"))
	require.NoError(t, err)

	outside := filepath.Join(dir, "..", "untouched.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	store.Remove([]string{
		ref,
		"/static/../untouched.txt",
		"not-a-ref",
		"",
	})

	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(ref, images.RefPrefix)))
	assert.True(t, os.IsNotExist(err), "saved file is gone")

	_, err = os.Stat(outside)
	assert.NoError(t, err, "references cannot escape the uploads directory")
}
